package preferences_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/features/preferences"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func newTestHandler(t *testing.T) (*preferences.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return preferences.NewHandler(db, apierr.NewErrorLogger(logger), logger), db
}

func TestHandleUpdate(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "Prefs Student", "female")

	body := `{"sleep_schedule":"Early Bird","cleanliness":8,"study_habits":"Quiet","noise_tolerance":3,"lifestyle":"Reserved"}`
	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/api/preferences", body), testutil.UserFor(st))
	rec := testutil.NewRecorder()
	handler.HandleUpdate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	got, err := studentstore.New(db).GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.MatchingOptIn {
		t.Error("expected update to opt the student into matching")
	}
	if got.AIPreferences.SleepSchedule != "early bird" {
		t.Errorf("sleep schedule: got %q, want normalized %q", got.AIPreferences.SleepSchedule, "early bird")
	}
}

func TestHandleUpdate_Validation(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "Bad Prefs", "male")

	cases := []struct {
		name string
		body string
	}{
		{"cleanliness out of range", `{"sleep_schedule":"early","cleanliness":11,"study_habits":"quiet","noise_tolerance":3,"lifestyle":"reserved"}`},
		{"missing fields", `{"cleanliness":5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/api/preferences", tc.body), testutil.UserFor(st))
			rec := testutil.NewRecorder()
			handler.HandleUpdate(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestHandleSetRoomType(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "Room Type Student", "female")

	// Lowercase input canonicalizes to the stored form.
	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/api/preferences/room-type", `{"room_type":"double"}`), testutil.UserFor(st))
	rec := testutil.NewRecorder()
	handler.HandleSetRoomType(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, models.RoomTypeDouble)

	got, err := studentstore.New(db).GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.SelectedRoomType != models.RoomTypeDouble {
		t.Errorf("selected room type: got %q, want %q", got.SelectedRoomType, models.RoomTypeDouble)
	}

	req = testutil.WithUser(testutil.NewJSONRequest("PUT", "/api/preferences/room-type", `{"room_type":"penthouse"}`), testutil.UserFor(st))
	rec = testutil.NewRecorder()
	handler.HandleSetRoomType(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleGet(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreatePoolStudent(ctx, "Get Student", "male", models.RoomTypeTriple,
		models.Preferences{SleepSchedule: "late", Cleanliness: 4})

	req := testutil.NewAuthenticatedRequest("GET", "/api/preferences", testutil.UserFor(st))
	rec := testutil.NewRecorder()
	handler.HandleGet(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, models.RoomTypeTriple)
	rec.AssertContains(t, "late")

	req = testutil.NewRequest("GET", "/api/preferences")
	rec = testutil.NewRecorder()
	handler.HandleGet(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
}
