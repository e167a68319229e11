package quality

import "time"

// CalculateScore rates a processing run from 0 to 10. Failed runs score 0.
func CalculateScore(originalSize, processedSize int64, processingTime time.Duration, success bool) float64 {
	if !success {
		return 0
	}

	score := 10.0

	var ratio float64
	if originalSize > 0 {
		ratio = float64(processedSize) / float64(originalSize)
		if ratio < 0.1 {
			score -= 2
		}
		if ratio > 0.8 {
			score -= 1
		}
	}

	switch {
	case processingTime > 10*time.Second:
		score -= 2
	case processingTime > 5*time.Second:
		score -= 1
	}

	if ratio >= 0.3 && ratio <= 0.6 {
		score += 0.5
	}
	if processingTime < 3*time.Second {
		score += 0.5
	}

	return min(max(score, 0), 10)
}
