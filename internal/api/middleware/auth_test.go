package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"linkvault/internal/engine/auth"
	"linkvault/internal/platform/config"
	"linkvault/internal/platform/models"
)

func testTokenService() *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "linkvault",
		Audience: "linkvault-api",
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := testTokenService()
	mid := NewAuthMiddleware(tokenSvc)

	var gotClaims *auth.Claims
	handler := mid.Handle(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	access, err := tokenSvc.IssueAccessToken(&models.Account{ID: "usr_1", Email: "alice@example.com"}, []string{"Admin"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	challenge, err := tokenSvc.IssueChallengeToken("usr_1")
	if err != nil {
		t.Fatalf("Failed to issue challenge: %v", err)
	}

	foreign, err := auth.NewTokenService(config.JWTConfig{
		Secret: "other-secret", Issuer: "linkvault", Audience: "linkvault-api",
	}).IssueAccessToken(&models.Account{ID: "usr_1"}, nil)
	if err != nil {
		t.Fatalf("Failed to issue foreign token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"wrong signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"challenge token rejected", "Bearer " + challenge, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotClaims == nil || gotClaims.UserID != "usr_1" {
					t.Errorf("Expected claims for usr_1, got %+v", gotClaims)
				}
				if len(gotClaims.Roles) != 1 || gotClaims.Roles[0] != "Admin" {
					t.Errorf("Expected roles [Admin], got %v", gotClaims.Roles)
				}
			}
		})
	}
}
