package payments_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/features/payments"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	notificationstore "github.com/hostelhaven/roomsync/internal/app/store/notifications"
	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func newTestHandler(t *testing.T) (*payments.Handler, *lifecycle.Manager, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mgr := lifecycle.NewManager(
		groupstore.New(db),
		studentstore.New(db),
		roomstore.New(db),
		requeststore.New(db),
		lifecycle.NewStoreNotifier(notificationstore.New(db)),
		logger,
	)
	return payments.NewHandler(db, mgr, apierr.NewErrorLogger(logger), logger), mgr, db
}

// selectedGroup drives two students through request, acceptance and room
// selection so each owes half the room price.
func selectedGroup(t *testing.T, mgr *lifecycle.Manager, db *mongo.Database) (alice, beth models.Student, group models.RoommateGroup) {
	t.Helper()
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.Preferences{SleepSchedule: "early", Cleanliness: 7}
	alice = fixtures.CreatePoolStudent(ctx, "Alice", "female", models.RoomTypeDouble, prefs)
	beth = fixtures.CreatePoolStudent(ctx, "Beth", "female", models.RoomTypeDouble, prefs)
	room := fixtures.CreateRoom(ctx, "B-201", "female", models.RoomTypeDouble)

	created, req, err := mgr.SendGroupRequest(ctx, lifecycle.SendRequestInput{
		RequesterID: alice.ID,
		RecipientID: beth.ID,
		Score:       100,
	})
	if err != nil {
		t.Fatalf("SendGroupRequest failed: %v", err)
	}
	if _, err := mgr.RespondToRequest(ctx, beth.ID, req.ID, "accept"); err != nil {
		t.Fatalf("RespondToRequest failed: %v", err)
	}
	group, err = mgr.SelectRoom(ctx, alice.ID, created.ID, room.ID)
	if err != nil {
		t.Fatalf("SelectRoom failed: %v", err)
	}
	return alice, beth, group
}

func TestHandlePayRoomFee(t *testing.T) {
	handler, mgr, db := newTestHandler(t)
	alice, beth, _ := selectedGroup(t, mgr, db)

	req := testutil.NewAuthenticatedRequest("POST", "/api/payments/room-fee", testutil.UserFor(alice))
	rec := testutil.NewRecorder()
	handler.HandlePayRoomFee(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"group_completed":false`)

	// Paying twice conflicts.
	req = testutil.NewAuthenticatedRequest("POST", "/api/payments/room-fee", testutil.UserFor(alice))
	rec = testutil.NewRecorder()
	handler.HandlePayRoomFee(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusConflict)

	// The last payment completes the group and finalizes the room.
	req = testutil.NewAuthenticatedRequest("POST", "/api/payments/room-fee", testutil.UserFor(beth))
	rec = testutil.NewRecorder()
	handler.HandlePayRoomFee(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"group_completed":true`)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := studentstore.New(db).GetByID(ctx, beth.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RoomID == nil {
		t.Error("expected a finalized room assignment")
	}
	if got.OnboardingStatus != models.OnboardingConfirmed {
		t.Errorf("onboarding status: got %q, want %q", got.OnboardingStatus, models.OnboardingConfirmed)
	}
}

func TestHandlePayRoomFee_NothingDue(t *testing.T) {
	handler, _, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	outsider := fixtures.CreateStudent(ctx, "Outsider", "male")

	req := testutil.NewAuthenticatedRequest("POST", "/api/payments/room-fee", testutil.UserFor(outsider))
	rec := testutil.NewRecorder()
	handler.HandlePayRoomFee(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleStatus(t *testing.T) {
	handler, mgr, db := newTestHandler(t)
	alice, _, _ := selectedGroup(t, mgr, db)

	req := testutil.NewAuthenticatedRequest("GET", "/api/payments/status", testutil.UserFor(alice))
	rec := testutil.NewRecorder()
	handler.HandleStatus(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, models.PaymentPending)
	rec.AssertContains(t, `"members_paid":0`)
	rec.AssertContains(t, `"members_total":2`)

	// Each member owes half the room price.
	rec.AssertContains(t, `"amount_to_pay":1200`)
}
