package login_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/features/login"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/indexes"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	if err := auth.InitSessionStore("0123456789abcdef0123456789abcdef", "", false, logger); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}
	return login.NewHandler(db, apierr.NewErrorLogger(logger), logger), db
}

func TestHandleRegister(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	body := `{"name":"Asha Verma","student_id":"HV-1001","email":"asha@example.com","gender":"female","course":"CS","year":2}`
	req := testutil.NewJSONRequest("POST", "/api/auth/register", body)
	rec := testutil.NewRecorder()
	handler.HandleRegister(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "asha@example.com")
	if cookies := rec.Result().Cookies(); len(cookies) == 0 {
		t.Error("expected a session cookie on registration")
	}

	// Same email again collides.
	req = testutil.NewJSONRequest("POST", "/api/auth/register", body)
	rec = testutil.NewRecorder()
	handler.HandleRegister(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleRegister_Validation(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"student_id":"HV-1","email":"a@b.com","gender":"male"}`},
		{"bad email", `{"name":"A","student_id":"HV-1","email":"not-an-email","gender":"male"}`},
		{"bad gender", `{"name":"A","student_id":"HV-1","email":"a@b.com","gender":"other"}`},
		{"not json", `{{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("POST", "/api/auth/register", tc.body)
			rec := testutil.NewRecorder()
			handler.HandleRegister(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "Login Student", "male")

	req := testutil.NewJSONRequest("POST", "/api/auth/login", `{"email":"`+st.Email+`"}`)
	rec := testutil.NewRecorder()
	handler.HandleLogin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, st.Email)

	// Unknown addresses get the same answer a wrong password would.
	req = testutil.NewJSONRequest("POST", "/api/auth/login", `{"email":"nobody@example.com"}`)
	rec = testutil.NewRecorder()
	handler.HandleLogin(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid credentials")
}

func TestHandleMe(t *testing.T) {
	handler, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "Me Student", "female")

	req := testutil.NewAuthenticatedRequest("GET", "/api/auth/me", testutil.UserFor(st))
	rec := testutil.NewRecorder()
	handler.HandleMe(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, st.Email)

	req = testutil.NewRequest("GET", "/api/auth/me")
	rec = testutil.NewRecorder()
	handler.HandleMe(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
}
