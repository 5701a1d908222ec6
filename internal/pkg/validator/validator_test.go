package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"subdomain", "alice@mail.example.co.uk", false},
		{"missing at", "aliceexample.com", true},
		{"missing local part", "@example.com", true},
		{"missing domain", "alice@", true},
		{"no tld", "alice@localhost", true},
		{"empty", "", true},
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
		{"valid", "alice", false},
		{"with separators", "alice.smith_99-x", false},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnopqrstuvwxyz0123456789", true},
		{"spaces", "alice smith", true},
		{"symbols", "alice!", true},
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

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("Expected 8 characters to pass, got %v", err)
	}
	if err := ValidatePassword("1234567"); err == nil {
		t.Error("Expected 7 characters to fail")
	}
}
