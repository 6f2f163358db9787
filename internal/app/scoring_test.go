package app

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		correct      bool
		elapsedSec   float64
		basePoints   int
		timeLimitSec int
		want         int
	}{
		{"incorrect scores zero", false, 0, 10, 10, 0},
		{"instant correct earns full base", true, 0, 10, 10, 10},
		{"halfway earns half", true, 5, 10, 10, 5},
		{"at the limit floors to one", true, 10, 10, 10, 1},
		{"past the limit floors to one", true, 25, 10, 10, 1},
		{"rounds to nearest", true, 2.6, 10, 10, 7},
		{"zero base falls back to ten", true, 0, 0, 10, 10},
		{"no limit earns full base", true, 99, 10, 0, 10},
		{"larger base scales", true, 3, 100, 10, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.correct, tt.elapsedSec, tt.basePoints, tt.timeLimitSec)
			if got != tt.want {
				t.Fatalf("Score(%v, %v, %d, %d) = %d, want %d",
					tt.correct, tt.elapsedSec, tt.basePoints, tt.timeLimitSec, got, tt.want)
			}
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	for elapsed := 0.0; elapsed < 30; elapsed += 0.7 {
		if got := Score(true, elapsed, 10, 10); got < 1 {
			t.Fatalf("Score(true, %v, 10, 10) = %d, correct answers must earn at least one point", elapsed, got)
		}
	}
}
