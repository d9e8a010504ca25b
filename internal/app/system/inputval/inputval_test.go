package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"  507f1f77bcf86cd799439011  ", true},

		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd7994390111", false},
		{"507f1f77bcf86cd79943901g", false},
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidRoomType(t *testing.T) {
	tests := []struct {
		roomType string
		want     bool
	}{
		{"Single", true},
		{"Double", true},
		{"triple", true},
		{"QUAD", true},
		{"  Quad  ", true},

		{"", false},
		{"dorm", false},
		{"suite", false},
	}

	for _, tt := range tests {
		t.Run(tt.roomType, func(t *testing.T) {
			if got := IsValidRoomType(tt.roomType); got != tt.want {
				t.Errorf("IsValidRoomType(%q) = %v, want %v", tt.roomType, got, tt.want)
			}
		})
	}
}

func TestValidate_StructTags(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		RoomType string `validate:"required,room_type"`
		Noise    int    `validate:"min=1,max=10"`
	}

	ok := payload{Email: "a@b.com", RoomType: "double", Noise: 5}
	if res := Validate(ok); res.HasErrors() {
		t.Errorf("valid payload rejected: %v", res.Errors)
	}

	bad := payload{Email: "nope", RoomType: "penthouse", Noise: 99}
	res := Validate(bad)
	if !res.HasErrors() {
		t.Fatal("invalid payload accepted")
	}
	if len(res.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(res.Errors), res.Errors)
	}
	if res.First() == "" {
		t.Error("First() empty on failing result")
	}
}
