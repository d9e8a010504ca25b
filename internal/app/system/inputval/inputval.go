// Package inputval validates request payloads using struct tags plus a few
// domain-specific helpers (room types, preference values, object ids).
package inputval

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Tag-level checks for the domain vocabulary, so payload structs can
		// say `validate:"room_type"` instead of repeating oneof lists.
		_ = validate.RegisterValidation("room_type", func(fl validator.FieldLevel) bool {
			return IsValidRoomType(fl.Field().String())
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
	})
	return validate
}

// Result collects human-readable validation failures in field order.
type Result struct {
	Errors []string
}

func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failure message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate runs the struct-tag rules against a payload struct.
func Validate(v any) Result {
	err := instance().Struct(v)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []string{err.Error()}}
	}
	var res Result
	for _, fe := range verrs {
		res.Errors = append(res.Errors, message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "room_type":
		return field + " must be one of: " + strings.Join(RoomTypesList(), ", ")
	case "objectid":
		return field + " must be a valid id"
	default:
		return field + " is invalid"
	}
}

// IsValidEmail reports whether the address passes the tag-level email rule.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return instance().Var(email, "email") == nil
}

// IsValidObjectID reports whether s is a 24-char hex Mongo object id.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidRoomType accepts the four room types, case-insensitively.
func IsValidRoomType(roomType string) bool {
	return CanonicalRoomType(roomType) != ""
}

// CanonicalRoomType maps any casing of a room type to its stored form
// ("Single", "Double", ...). Empty for unknown types.
func CanonicalRoomType(roomType string) string {
	roomType = strings.TrimSpace(roomType)
	for _, t := range RoomTypesList() {
		if strings.EqualFold(roomType, t) {
			return t
		}
	}
	return ""
}

// RoomTypesList returns the allowed room types in canonical order.
func RoomTypesList() []string {
	return []string{
		models.RoomTypeSingle,
		models.RoomTypeDouble,
		models.RoomTypeTriple,
		models.RoomTypeQuad,
	}
}

// IsValidScaleValue accepts the 1-10 preference scale used for cleanliness
// and noise tolerance.
func IsValidScaleValue(v int) bool {
	return v >= 1 && v <= 10
}
