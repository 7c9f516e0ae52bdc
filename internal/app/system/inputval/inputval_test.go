package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a@x.com", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{" user@example.com", false},
		{"User Name <user@example.com>", false},
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

type sample struct {
	Name  string `validate:"required,max=5" label:"name"`
	Email string `validate:"required,emailaddr" label:"email"`
	Role  string `validate:"omitempty,role" label:"role"`
	Pass  string `validate:"omitempty,pwbytes" label:"password"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		in    sample
		first string
		count int
	}{
		{"valid", sample{Name: "Ann", Email: "a@x.com"}, "", 0},
		{"valid with role", sample{Name: "Ann", Email: "a@x.com", Role: "admin"}, "", 0},
		{"missing name", sample{Email: "a@x.com"}, "name is required", 1},
		{"long name", sample{Name: "Annabel", Email: "a@x.com"}, "name must be at most 5 characters", 1},
		{"bad email", sample{Name: "Ann", Email: "nope"}, "email must be a valid email address", 1},
		{"bad role", sample{Name: "Ann", Email: "a@x.com", Role: "root"}, "role must be one of admin, user", 1},
		{"password at byte limit", sample{Name: "Ann", Email: "a@x.com", Pass: strings.Repeat("é", 36)}, "", 0},
		{"password over byte limit", sample{Name: "Ann", Email: "a@x.com", Pass: strings.Repeat("é", 37)}, "password must be at most 72 bytes", 1},
		{"everything missing", sample{}, "name is required", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if res.HasErrors() != (tt.count > 0) {
				t.Fatalf("HasErrors = %v, want %v (%v)", res.HasErrors(), tt.count > 0, res.Errors)
			}
			if len(res.Errors) != tt.count {
				t.Errorf("error count: got %d, want %d (%v)", len(res.Errors), tt.count, res.Errors)
			}
			if got := res.First(); got != tt.first {
				t.Errorf("First() = %q, want %q", got, tt.first)
			}
		})
	}
}
