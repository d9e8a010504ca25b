package match

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hostelhaven/roomsync/internal/domain/models"
)

var (
	quietPrefs = models.Preferences{
		SleepSchedule:  "early bird",
		Cleanliness:    8,
		StudyHabits:    "quiet",
		NoiseTolerance: 3,
		Lifestyle:      "reserved",
	}
	loudPrefs = models.Preferences{
		SleepSchedule:  "late night",
		Cleanliness:    1,
		StudyHabits:    "group study",
		NoiseTolerance: 10,
		Lifestyle:      "party",
	}
)

func poolStudent(roomType string, prefs models.Preferences) models.Student {
	return models.Student{
		ID:               primitive.NewObjectID(),
		Gender:           "female",
		SelectedRoomType: roomType,
		AIPreferences:    prefs,
		MatchingOptIn:    true,
	}
}

func TestFindIndividualMatches_Validation(t *testing.T) {
	e := Engine{}

	cases := []struct {
		name     string
		target   models.Student
		roomType string
		wantErr  error
	}{
		{
			name:     "room type not set",
			target:   models.Student{AIPreferences: quietPrefs},
			roomType: models.RoomTypeDouble,
			wantErr:  ErrRoomTypeNotSet,
		},
		{
			name:     "single room excluded",
			target:   poolStudent(models.RoomTypeSingle, quietPrefs),
			roomType: models.RoomTypeSingle,
			wantErr:  ErrSingleRoomNoMatching,
		},
		{
			name:     "requested type differs from selection",
			target:   poolStudent(models.RoomTypeDouble, quietPrefs),
			roomType: models.RoomTypeTriple,
			wantErr:  ErrRoomTypeMismatch,
		},
		{
			name:     "preferences unanswered",
			target:   poolStudent(models.RoomTypeDouble, models.Preferences{}),
			roomType: models.RoomTypeDouble,
			wantErr:  ErrPreferencesNotSet,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.FindIndividualMatches(tc.target, nil, 50, tc.roomType)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestFindIndividualMatches_RanksAndFilters(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeDouble, quietPrefs)

	twin := poolStudent(models.RoomTypeDouble, quietPrefs)
	nearPrefs := quietPrefs
	nearPrefs.Cleanliness = 5
	near := poolStudent(models.RoomTypeDouble, nearPrefs)
	opposite := poolStudent(models.RoomTypeDouble, loudPrefs)

	got, err := e.FindIndividualMatches(target, []models.Student{opposite, near, twin}, 50, models.RoomTypeDouble)
	if err != nil {
		t.Fatalf("FindIndividualMatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Student.ID != twin.ID {
		t.Errorf("best candidate = %v, want the identical twin", got[0].Student.ID)
	}
	if got[0].Score != MaxScore {
		t.Errorf("best score = %d, want %d", got[0].Score, MaxScore)
	}
	if got[1].Student.ID != near.ID {
		t.Errorf("second candidate = %v, want the near match", got[1].Student.ID)
	}
	for _, c := range got {
		if c.BelowThreshold {
			t.Errorf("qualifying candidate %v flagged below threshold", c.Student.ID)
		}
	}
}

func TestFindIndividualMatches_ExcludesSelf(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeDouble, quietPrefs)

	got, err := e.FindIndividualMatches(target, []models.Student{target}, 0, models.RoomTypeDouble)
	if err != nil {
		t.Fatalf("FindIndividualMatches: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0 when the pool only contains the target", len(got))
	}
}

func TestFindIndividualMatches_FallbackIsFlaggedAndCapped(t *testing.T) {
	e := Engine{TopK: 2}
	target := poolStudent(models.RoomTypeDouble, quietPrefs)

	pool := []models.Student{
		poolStudent(models.RoomTypeDouble, loudPrefs),
		poolStudent(models.RoomTypeDouble, loudPrefs),
		poolStudent(models.RoomTypeDouble, loudPrefs),
	}

	got, err := e.FindIndividualMatches(target, pool, 60, models.RoomTypeDouble)
	if err != nil {
		t.Fatalf("FindIndividualMatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d fallback candidates, want TopK = 2", len(got))
	}
	for _, c := range got {
		if !c.BelowThreshold {
			t.Errorf("fallback candidate %v not flagged below threshold", c.Student.ID)
		}
		if c.Score >= 60 {
			t.Errorf("fallback candidate scored %d, expected below the minimum", c.Score)
		}
	}
}

func TestFindGroups_AssemblesTriple(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeTriple, quietPrefs)

	a := poolStudent(models.RoomTypeTriple, quietPrefs)
	b := poolStudent(models.RoomTypeTriple, quietPrefs)
	stranger := poolStudent(models.RoomTypeTriple, loudPrefs)

	got, err := e.FindGroups(target, []models.Student{stranger, a, b}, 50, models.RoomTypeTriple)
	if err != nil {
		t.Fatalf("FindGroups: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d proposals, want 1", len(got))
	}
	p := got[0]
	if len(p.Members) != 2 {
		t.Fatalf("proposal has %d members, want 2 companions for a triple", len(p.Members))
	}
	for _, m := range p.Members {
		if m.Student.ID != a.ID && m.Student.ID != b.ID {
			t.Errorf("unexpected member %v in proposal", m.Student.ID)
		}
		if m.Student.ID == target.ID {
			t.Error("target included in its own proposal members")
		}
	}
	if p.AverageScore != MaxScore {
		t.Errorf("average score = %d, want %d for identical preferences", p.AverageScore, MaxScore)
	}
	if p.RecommendedRoomType != models.RoomTypeTriple {
		t.Errorf("recommended room type = %q, want %q", p.RecommendedRoomType, models.RoomTypeTriple)
	}
	if p.BelowThreshold {
		t.Error("qualifying proposal flagged below threshold")
	}
}

func TestFindGroups_PoolTooSmall(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeQuad, quietPrefs)

	got, err := e.FindGroups(target, []models.Student{poolStudent(models.RoomTypeQuad, quietPrefs)}, 50, models.RoomTypeQuad)
	if err != nil {
		t.Fatalf("FindGroups: %v", err)
	}
	if got != nil {
		t.Errorf("got %d proposals, want none for an undersized pool", len(got))
	}
}

func TestFindGroups_MembersAreDisjoint(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeDouble, quietPrefs)

	pool := []models.Student{
		poolStudent(models.RoomTypeDouble, quietPrefs),
		poolStudent(models.RoomTypeDouble, quietPrefs),
		poolStudent(models.RoomTypeDouble, quietPrefs),
	}

	got, err := e.FindGroups(target, pool, 50, models.RoomTypeDouble)
	if err != nil {
		t.Fatalf("FindGroups: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d proposals, want 3", len(got))
	}
	seen := map[primitive.ObjectID]bool{}
	for _, p := range got {
		for _, m := range p.Members {
			if seen[m.Student.ID] {
				t.Errorf("student %v appears in more than one proposal", m.Student.ID)
			}
			seen[m.Student.ID] = true
		}
	}
}

func TestFindGroups_FallbackFlagged(t *testing.T) {
	e := Engine{}
	target := poolStudent(models.RoomTypeDouble, quietPrefs)

	got, err := e.FindGroups(target, []models.Student{poolStudent(models.RoomTypeDouble, loudPrefs)}, 60, models.RoomTypeDouble)
	if err != nil {
		t.Fatalf("FindGroups: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d proposals, want 1", len(got))
	}
	if !got[0].BelowThreshold {
		t.Error("low-scoring proposal not flagged below threshold")
	}
}
