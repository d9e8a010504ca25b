package matching_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/features/matching"
	"github.com/hostelhaven/roomsync/internal/app/match"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func newTestHandler(t *testing.T) (*matching.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return matching.NewHandler(db, match.Engine{TopK: 5}, 50, apierr.NewErrorLogger(logger), logger), db
}

func TestHandleIndividuals(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.Preferences{SleepSchedule: "early", Cleanliness: 7, Lifestyle: "reserved"}
	target := fixtures.CreatePoolStudent(ctx, "Target", "female", models.RoomTypeDouble, prefs)
	twin := fixtures.CreatePoolStudent(ctx, "Twin", "female", models.RoomTypeDouble, prefs)
	fixtures.CreatePoolStudent(ctx, "Other Wing", "male", models.RoomTypeDouble, prefs)

	req := testutil.NewAuthenticatedRequest("GET", "/api/matching/individuals", testutil.UserFor(target))
	rec := testutil.NewRecorder()
	handler.HandleIndividuals(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, twin.Name)
	rec.AssertContains(t, `"score":100`)
}

func TestHandleIndividuals_RequiresRoomType(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Registered but never picked a room type.
	st := fixtures.CreateStudent(ctx, "No Type", "male")

	req := testutil.NewAuthenticatedRequest("GET", "/api/matching/individuals", testutil.UserFor(st))
	rec := testutil.NewRecorder()
	handler.HandleIndividuals(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleGroups(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.Preferences{SleepSchedule: "early", Cleanliness: 7}
	target := fixtures.CreatePoolStudent(ctx, "Target", "male", models.RoomTypeTriple, prefs)
	fixtures.CreatePoolStudent(ctx, "First", "male", models.RoomTypeTriple, prefs)
	fixtures.CreatePoolStudent(ctx, "Second", "male", models.RoomTypeTriple, prefs)

	req := testutil.NewAuthenticatedRequest("GET", "/api/matching/groups", testutil.UserFor(target))
	rec := testutil.NewRecorder()
	handler.HandleGroups(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, models.RoomTypeTriple)
	rec.AssertContains(t, `"average_score":100`)
}
