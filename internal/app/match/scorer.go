// internal/app/match/scorer.go

// Package match computes lifestyle compatibility between students and
// proposes roommate matches and groups from the eligible pool. Everything
// here is pure: no I/O, no clock, deterministic output for a given input.
package match

import (
	"math"
	"strings"

	"github.com/hostelhaven/roomsync/internal/domain/models"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Each of the five preference dimensions contributes equally.
const dimensionWeight = float64(MaxScore) / 5

// Categorical answers are bucketed on a quiet→social (or early→late) axis.
// Unknown phrasings land in the middle bucket, so a missing or unrecognized
// answer contributes neutrally instead of skewing the score.
const (
	bucketLow = iota
	bucketMid
	bucketHigh
)

// Score computes the 0-100 compatibility between two preference vectors.
// It is symmetric and deterministic; identical vectors score 100 and fully
// divergent vectors score 0.
func Score(a, b models.Preferences) int {
	total := categoricalPoints(a.SleepSchedule, b.SleepSchedule, sleepBucket) +
		numericPoints(a.Cleanliness, b.Cleanliness) +
		categoricalPoints(a.StudyHabits, b.StudyHabits, studyBucket) +
		numericPoints(a.NoiseTolerance, b.NoiseTolerance) +
		categoricalPoints(a.Lifestyle, b.Lifestyle, lifestyleBucket)

	score := int(math.Round(total))
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// categoricalPoints awards full credit for the same bucket, half for an
// adjacent bucket and nothing for opposite ends. Literal string equality
// short-circuits to full credit so that unrecognized-but-identical answers
// still satisfy score(a,a)==100.
func categoricalPoints(a, b string, bucket func(string) int) float64 {
	an, bn := normalize(a), normalize(b)
	if an == bn {
		return dimensionWeight
	}
	dist := bucket(an) - bucket(bn)
	if dist < 0 {
		dist = -dist
	}
	switch dist {
	case 0:
		return dimensionWeight
	case 1:
		return dimensionWeight / 2
	}
	return 0
}

// numericPoints scores a 1-10 scale by inverse distance. Unset values (0)
// count as the midpoint, mirroring the neutral treatment of missing
// categorical answers.
func numericPoints(a, b int) float64 {
	const span = 9 // widest possible distance on a 1-10 scale
	av, bv := numericValue(a), numericValue(b)
	dist := math.Abs(av - bv)
	return dimensionWeight * (1 - dist/span)
}

func numericValue(v int) float64 {
	if v < 1 || v > 10 {
		return 5.5
	}
	return float64(v)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sleepBucket(s string) int {
	switch {
	case s == "":
		return bucketMid
	case containsAny(s, "early", "10 pm", "11 pm"):
		return bucketLow
	case containsAny(s, "late", "2 am", "3 am"):
		return bucketHigh
	case containsAny(s, "normal", "12 am", "1 am"):
		return bucketMid
	}
	return bucketMid
}

func studyBucket(s string) int {
	switch {
	case s == "":
		return bucketMid
	case containsAny(s, "quiet", "library", "silent"):
		return bucketLow
	case containsAny(s, "group", "music", "social"):
		return bucketHigh
	case containsAny(s, "moderate", "flexible"):
		return bucketMid
	}
	return bucketMid
}

func lifestyleBucket(s string) int {
	switch {
	case s == "":
		return bucketMid
	case containsAny(s, "quiet", "reserved", "introvert"):
		return bucketLow
	case containsAny(s, "social", "outgoing", "extrovert", "party"):
		return bucketHigh
	case containsAny(s, "balanced", "moderate", "ambivert"):
		return bucketMid
	}
	return bucketMid
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
