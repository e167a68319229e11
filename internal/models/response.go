package models

import "time"

type ResultImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type JobResultData struct {
	Images []ResultImage `json:"images"`
	JobID  string        `json:"jobId"`
}

// JobResult is the shape returned for every submission, successful or not.
type JobResult struct {
	Success bool           `json:"success"`
	Data    *JobResultData `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type JobResponse struct {
	ID        string                 `json:"id"`
	Mode      JobMode                `json:"mode"`
	Prompt    string                 `json:"prompt"`
	Images    []string               `json:"images"`
	OutputURL string                 `json:"output_url,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type UploadResponse struct {
	Success bool     `json:"success"`
	URLs    []string `json:"urls"`
}

type PresetResponse struct {
	Name                string   `json:"name"`
	Strength            float64  `json:"strength"`
	Guidance            float64  `json:"guidance"`
	GuidanceScale       float64  `json:"guidance_scale"`
	InferenceSteps      int      `json:"num_inference_steps"`
	EnableSafetyChecker bool     `json:"enable_safety_checker"`
	Valid               bool     `json:"valid"`
	Violations          []string `json:"violations,omitempty"`
}

type PresetListResponse struct {
	Presets []PresetResponse `json:"presets"`
	Sizes   []string         `json:"sizes"`
}

type ImageReport struct {
	Filename        string   `json:"filename"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Size            int64    `json:"size"`
	Score           int      `json:"score"`
	IsOptimal       bool     `json:"is_optimal"`
	Recommendations []string `json:"recommendations"`
	Error           string   `json:"error,omitempty"`
}

type ImageReportsResponse struct {
	Reports []ImageReport `json:"reports"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	GenerationMode string `json:"generation_mode"`
}

// ToJobResponse maps a stored job onto its API representation.
func ToJobResponse(j *Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Mode:      j.Mode,
		Prompt:    j.Prompt,
		Images:    j.Images,
		OutputURL: j.OutputURL,
		Meta:      j.Meta,
		CreatedAt: j.CreatedAt,
	}
}
