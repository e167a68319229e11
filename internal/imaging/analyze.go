package imaging

const (
	minRecommendedSide = 512
	maxRecommendedSide = 4096
	largeFileSize      = 10 << 20
	optimalScore       = 80
)

type Report struct {
	Width           int
	Height          int
	Size            int64
	Score           int
	IsOptimal       bool
	Recommendations []string
}

// Analyze scores how well an image suits generation, starting from 100.
func Analyze(data []byte) (*Report, error) {
	width, height, err := Dimensions(data)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Width:           width,
		Height:          height,
		Size:            int64(len(data)),
		Score:           100,
		Recommendations: []string{},
	}

	if width < minRecommendedSide || height < minRecommendedSide {
		report.penalize(30, "Image resolution is too low. Recommend at least 512x512 pixels.")
	}
	if width > maxRecommendedSide || height > maxRecommendedSide {
		report.penalize(10, "Image resolution is very high. Consider resizing to 2048x2048 for optimal processing speed.")
	}
	if report.Size > largeFileSize {
		report.penalize(15, "File size is large. Consider compression to improve upload speed.")
	}
	if height > 0 {
		aspect := float64(width) / float64(height)
		if aspect > 3 || aspect < 0.33 {
			report.penalize(20, "Extreme aspect ratio detected. Square or near-square images work best for AI processing.")
		}
	}

	report.Score = max(report.Score, 0)
	report.IsOptimal = report.Score >= optimalScore
	return report, nil
}

func (r *Report) penalize(points int, recommendation string) {
	r.Score -= points
	r.Recommendations = append(r.Recommendations, recommendation)
}
