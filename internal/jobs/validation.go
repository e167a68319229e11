package jobs

import (
	"strings"

	"go.uber.org/zap"
	"joyex-backend/internal/accuracy"
	"joyex-backend/internal/fal"
	"joyex-backend/internal/models"
)

const (
	msgImagesRequired   = "at least one image is required"
	msgPromptRequired   = "prompt is required"
	msgReplaceMinImages = "replace mode requires at least 2 images"
	msgReplaceSets      = "replace mode requires at least one competitor image and one product image"
	msgImageURLs        = "image urls must be absolute URLs"
)

// ValidationError is a caller mistake. Its message is safe to show to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

type validated struct {
	images         []string
	preset         accuracy.Config
	accurate       bool
	competitorSize int
	productSize    int
}

// validate checks the input in a fixed order and stops at the first failure.
func (s *Service) validate(in Input) (*validated, error) {
	explicit := len(in.CompetitorImages) > 0 || len(in.ProductImages) > 0

	images := in.ImageURLs
	if explicit {
		images = make([]string, 0, len(in.CompetitorImages)+len(in.ProductImages))
		images = append(images, in.CompetitorImages...)
		images = append(images, in.ProductImages...)
	}

	if len(images) == 0 {
		return nil, invalid(msgImagesRequired)
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, invalid(msgPromptRequired)
	}
	if !in.Mode.Valid() {
		return nil, invalid("mode must be one of: edit, replace")
	}
	if in.Mode == models.ModeReplace {
		if len(images) < 2 {
			return nil, invalid(msgReplaceMinImages)
		}
		if explicit && (len(in.CompetitorImages) == 0 || len(in.ProductImages) == 0) {
			return nil, invalid(msgReplaceSets)
		}
	}

	resolved := s.resolveURLs(images)
	if !fal.ValidateImageURLs(resolved) {
		return nil, invalid(msgImageURLs)
	}

	presetName := in.AccuracyPreset
	if presetName == "" {
		presetName = s.defaultPreset
	}
	preset, err := accuracy.Resolve(presetName)
	if err != nil {
		return nil, invalid(err.Error())
	}

	// The policy applies to the parameters actually sent, so a caller
	// strength override is checked too.
	effective := preset
	if in.Strength != nil {
		effective.Strength = *in.Strength
	}
	violations := accuracy.Violations(effective)
	if len(violations) > 0 {
		if s.strictAccuracy {
			return nil, invalid("accuracy preset " + preset.Name + " failed validation: " + strings.Join(violations, "; "))
		}
		s.logger.Warn("accuracy preset failed validation",
			zap.String("preset", preset.Name),
			zap.Strings("violations", violations),
		)
	}

	v := &validated{images: resolved, preset: preset, accurate: len(violations) == 0}
	if explicit {
		v.competitorSize = len(in.CompetitorImages)
		v.productSize = len(in.ProductImages)
	}
	return v, nil
}

// resolveURLs turns server-relative upload paths into absolute URLs the
// generation service can fetch.
func (s *Service) resolveURLs(images []string) []string {
	out := make([]string, len(images))
	for i, img := range images {
		if s.publicBaseURL != "" && strings.HasPrefix(img, "/") && !strings.HasPrefix(img, "//") {
			out[i] = s.publicBaseURL + img
			continue
		}
		out[i] = img
	}
	return out
}
