package validation

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "kid@example.com", wantErr: false},
		{name: "valid with plus", email: "parent+star@example.co.uk", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "whitespace only", email: "   ", wantErr: true},
		{name: "missing at", email: "kidexample.com", wantErr: true},
		{name: "missing tld", email: "kid@example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid", username: "Luna", wantErr: false},
		{name: "two characters", username: "Jo", wantErr: false},
		{name: "empty", username: "", wantErr: true},
		{name: "single character", username: "J", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateParentPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "abc123", wantErr: false},
		{name: "empty", password: "", wantErr: true},
		{name: "too short", password: "abc12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParentPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParentPassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorFieldsPreserved(t *testing.T) {
	err := ValidateFirebaseUID("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "firebaseUid" {
		t.Errorf("Field = %q, want firebaseUid", verr.Field)
	}
}

func TestValidateTaskTitle(t *testing.T) {
	if err := ValidateTaskTitle("Brush teeth"); err != nil {
		t.Errorf("ValidateTaskTitle() unexpected error: %v", err)
	}
	if err := ValidateTaskTitle("  "); err == nil {
		t.Error("ValidateTaskTitle() expected error for blank title")
	}
}
