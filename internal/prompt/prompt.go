// Package prompt expands a user's instruction into the full prompt sent to the
// image generation model.
package prompt

import (
	"fmt"
	"strings"

	"joyex-backend/internal/models"
)

// BuildEditPrompt wraps instruction in the multi-image edit template. The
// result always contains imageCount and instruction verbatim.
func BuildEditPrompt(instruction string, imageCount int) string {
	lines := []string{
		fmt.Sprintf("TASK: Edit all %d uploaded images according to the instruction below.", imageCount),
		"",
		"USER REQUEST: " + instruction,
		"",
		"QUALITY REQUIREMENTS:",
		"- Render at the highest available resolution with no visible compression artifacts.",
		"- Keep every unedited region identical to the source image.",
		"- Preserve fine textures, materials and small details.",
		"- Produce sharp, photorealistic output suitable for professional use.",
		"",
		"CONSISTENCY REQUIREMENTS:",
		fmt.Sprintf("- Apply the same change consistently across all %d images.", imageCount),
		"- Keep lighting direction, color temperature and shadows consistent with each source.",
		"- Keep object scale and proportions realistic.",
		"- Keep the original composition and aspect ratio unless the request says otherwise.",
		"- Blend added elements naturally into the scene.",
		"",
		"STYLE: Photorealistic studio result that stays faithful to the input images.",
	}
	return strings.Join(lines, "\n")
}

// BuildReplacePrompt returns the competitor replace template. A non-blank
// addon is appended verbatim as additional requirements.
func BuildReplacePrompt(addon string) string {
	lines := []string{
		"TASK: Replace the competitor product shown in the reference images with our product.",
		"",
		"INPUTS: The first images are the reference scene with the competitor product. The remaining images show our product.",
		"",
		"SCENE REQUIREMENTS:",
		"- Keep the background, setting and atmosphere of the reference scene unchanged.",
		"- Keep the camera angle, perspective and composition exactly as in the reference.",
		"- Match lighting direction, intensity and color temperature on the inserted product.",
		"- Recreate realistic shadows, reflections and depth of field around our product.",
		"- Preserve text, logos or branding that belong to the scene rather than the competitor product.",
		"",
		"PRODUCT REQUIREMENTS:",
		"- Reproduce our product faithfully: shape, color, materials and labels must match its images.",
		"- Place it at the same position and a realistic scale relative to the scene.",
		"- Leave no trace of the competitor product.",
		"",
		"STYLE: Commercial product photography, photorealistic, with no visible editing artifacts.",
	}
	base := strings.Join(lines, "\n")

	if addon = strings.TrimSpace(addon); addon != "" {
		return base + "\n\nADDITIONAL REQUIREMENTS: " + addon
	}
	return base
}

// Build dispatches on mode. imageCount is ignored for replace jobs.
func Build(mode models.JobMode, instruction string, imageCount int, addon string) (string, error) {
	switch mode {
	case models.ModeEdit:
		return BuildEditPrompt(instruction, imageCount), nil
	case models.ModeReplace:
		return BuildReplacePrompt(addon), nil
	default:
		return "", fmt.Errorf("unsupported mode %q", mode)
	}
}
