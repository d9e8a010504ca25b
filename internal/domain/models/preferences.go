// internal/domain/models/preferences.go
package models

// Preferences is the lifestyle questionnaire a student fills in before
// entering the matching pool. Categorical answers are free-ish text coming
// from the onboarding UI ("10 PM - 7 AM (Normal)", "Quiet (Library Style)",
// "Social & Outgoing", ...); the scorer buckets them, so unknown phrasings
// degrade to a neutral contribution instead of failing.
type Preferences struct {
	SleepSchedule  string `bson:"sleep_schedule,omitempty" json:"sleep_schedule,omitempty"`
	Cleanliness    int    `bson:"cleanliness,omitempty" json:"cleanliness,omitempty"`
	StudyHabits    string `bson:"study_habits,omitempty" json:"study_habits,omitempty"`
	NoiseTolerance int    `bson:"noise_tolerance,omitempty" json:"noise_tolerance,omitempty"`
	Lifestyle      string `bson:"lifestyle,omitempty" json:"lifestyle,omitempty"`
}

// IsSet reports whether the student answered the questionnaire at all.
// A single answered field is enough to enter the pool; unanswered fields
// score as neutral.
func (p Preferences) IsSet() bool {
	return p.SleepSchedule != "" || p.Cleanliness != 0 || p.StudyHabits != "" ||
		p.NoiseTolerance != 0 || p.Lifestyle != ""
}
