package models

type SubmitJobRequest struct {
	Mode JobMode `json:"mode" example:"edit"`
	// Prompt is the user's instruction before template expansion.
	Prompt    string   `json:"prompt" example:"make it snow"`
	ImageURLs []string `json:"image_urls,omitempty"`
	// CompetitorImages and ProductImages split the inputs of a replace job
	// explicitly. When either is set ImageURLs is ignored.
	CompetitorImages []string `json:"competitor_images,omitempty"`
	ProductImages    []string `json:"product_images,omitempty"`
	Size             string   `json:"size,omitempty" example:"2048x2048"`
	Seed             *int64   `json:"seed,omitempty"`
	Strength         *float64 `json:"strength,omitempty"`
	Guidance         *float64 `json:"guidance,omitempty"`
	AddonPrompt      string   `json:"addon_prompt,omitempty"`
	AccuracyPreset   string   `json:"accuracy_preset,omitempty" example:"standard"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
