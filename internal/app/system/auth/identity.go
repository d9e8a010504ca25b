package auth

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CurrentStudentID resolves the signed-in user's object id. The second
// return is false when there is no user or the session carries a malformed
// id.
func CurrentStudentID(r *http.Request) (primitive.ObjectID, bool) {
	u, ok := CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
