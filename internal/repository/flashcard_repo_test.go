package repository

import (
	"math"
	"testing"
)

func TestNextSchedule(t *testing.T) {
	start := Schedule{IntervalDays: 1, EaseFactor: 2.5, Repetitions: 0}

	tests := []struct {
		name     string
		cur      Schedule
		rating   int
		interval int
		reps     int
		ease     float64
	}{
		{"first good review", start, 2, 1, 1, 2.5},
		{"second good review", Schedule{1, 2.5, 1}, 2, 6, 2, 2.5},
		{"third easy review multiplies interval", Schedule{6, 2.5, 2}, 3, 15, 3, 2.6},
		{"again resets", Schedule{15, 2.6, 3}, 0, 1, 0, 2.28},
		{"hard resets", Schedule{6, 2.5, 2}, 1, 1, 0, 2.36},
		{"ease floor", Schedule{1, 1.3, 0}, 0, 1, 0, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextSchedule(tt.cur, tt.rating)
			if got.IntervalDays != tt.interval {
				t.Fatalf("interval: expected %d, got %d", tt.interval, got.IntervalDays)
			}
			if got.Repetitions != tt.reps {
				t.Fatalf("repetitions: expected %d, got %d", tt.reps, got.Repetitions)
			}
			if math.Abs(got.EaseFactor-tt.ease) > 1e-9 {
				t.Fatalf("ease: expected %.2f, got %.4f", tt.ease, got.EaseFactor)
			}
		})
	}
}
