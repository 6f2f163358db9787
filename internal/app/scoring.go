package app

import "math"

// Score converts a correctness verdict and response time into points.
// Incorrect answers score zero. Correct answers earn the base points scaled
// down linearly by elapsed time over the question timer, rounded to the
// nearest integer, with a floor of one point: a correct answer is never
// worth nothing. No side effects, no storage.
func Score(correct bool, elapsedSec float64, basePoints, timeLimitSec int) int {
	if !correct {
		return 0
	}
	if basePoints <= 0 {
		basePoints = 10
	}
	if timeLimitSec <= 0 {
		return basePoints
	}
	remaining := 1 - elapsedSec/float64(timeLimitSec)
	if remaining < 0 {
		remaining = 0
	}
	points := int(math.Round(float64(basePoints) * remaining))
	if points < 1 {
		points = 1
	}
	return points
}
