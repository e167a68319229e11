// Package accuracy holds the named generation parameter presets that bound how
// far the model may drift from its input images.
package accuracy

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Standard          = "standard"
	UltraConservative = "ultra-conservative"

	// legacy name for Standard
	absoluteAlias = "absolute"
)

// Validation bounds.
const (
	MaxStrength       = 0.2
	MinInferenceSteps = 100
	MinQualityScore   = 0.9
)

type Processing struct {
	BypassOptimization     bool `json:"bypass_optimization"`
	MaintainOriginalFormat bool `json:"maintain_original_format"`
	PreserveMetadata       bool `json:"preserve_metadata"`
	DisableEnhancements    bool `json:"disable_enhancements"`
	UseRawMode             bool `json:"use_raw_mode"`
}

type Thresholds struct {
	MinFileSize   int64   `json:"min_file_size"`
	MaxDimensions int     `json:"max_dimensions"` // 0 means unlimited
	QualityScore  float64 `json:"quality_score"`
}

// Config is an immutable preset. Lower Strength keeps output closer to the inputs.
type Config struct {
	Name                string     `json:"name"`
	Strength            float64    `json:"strength"`
	Guidance            float64    `json:"guidance"`
	GuidanceScale       float64    `json:"guidance_scale"`
	InferenceSteps      int        `json:"num_inference_steps"`
	EnableSafetyChecker bool       `json:"enable_safety_checker"`
	Processing          Processing `json:"processing"`
	Thresholds          Thresholds `json:"thresholds"`
}

var rawProcessing = Processing{
	BypassOptimization:     true,
	MaintainOriginalFormat: true,
	PreserveMetadata:       true,
	DisableEnhancements:    true,
	UseRawMode:             true,
}

var presets = map[string]Config{
	Standard: {
		Name:                Standard,
		Strength:            0.15,
		Guidance:            7.0,
		GuidanceScale:       7.0,
		InferenceSteps:      150,
		EnableSafetyChecker: true,
		Processing:          rawProcessing,
		Thresholds: Thresholds{
			MinFileSize:  50 * 1024,
			QualityScore: 0.95,
		},
	},
	UltraConservative: {
		Name:                UltraConservative,
		Strength:            0.1,
		Guidance:            6.0,
		GuidanceScale:       6.0,
		InferenceSteps:      200,
		EnableSafetyChecker: true,
		Processing:          rawProcessing,
		Thresholds: Thresholds{
			MinFileSize:  100 * 1024,
			QualityScore: 0.98,
		},
	},
}

// Resolve returns the preset registered under name. An empty name resolves to
// Standard.
func Resolve(name string) (Config, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == absoluteAlias {
		key = Standard
	}
	cfg, ok := presets[key]
	if !ok {
		return Config{}, fmt.Errorf("unknown accuracy preset %q", name)
	}
	return cfg, nil
}

// Get is Resolve with a fallback to Standard for unknown names.
func Get(name string) Config {
	cfg, err := Resolve(name)
	if err != nil {
		return presets[Standard]
	}
	return cfg
}

// Names lists the registered presets in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports whether cfg meets the minimum fidelity policy. It never
// fails hard; callers decide whether a false result blocks anything.
func Validate(cfg Config) bool {
	return len(Violations(cfg)) == 0
}

// Violations describes each policy check cfg fails.
func Violations(cfg Config) []string {
	var out []string
	if cfg.Strength > MaxStrength {
		out = append(out, fmt.Sprintf("strength %.2f exceeds %.2f", cfg.Strength, MaxStrength))
	}
	if cfg.InferenceSteps < MinInferenceSteps {
		out = append(out, fmt.Sprintf("num_inference_steps %d is below %d", cfg.InferenceSteps, MinInferenceSteps))
	}
	if !cfg.Processing.UseRawMode {
		out = append(out, "raw mode is disabled")
	}
	if cfg.Thresholds.QualityScore < MinQualityScore {
		out = append(out, fmt.Sprintf("quality score %.2f is below %.2f", cfg.Thresholds.QualityScore, MinQualityScore))
	}
	return out
}
