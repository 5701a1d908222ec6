package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"linkvault/internal/api/middleware"
	"linkvault/internal/engine/auth"
	"linkvault/internal/pkg/errors"
	"linkvault/internal/pkg/validator"
	"linkvault/internal/platform/models"
)

type AuthHandler struct {
	authSvc *auth.Service
}

func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    int64           `json:"expires_at"`
	User         *models.Account `json:"user"`
}

// ChallengeResponse is structurally distinct from AuthResponse so callers
// can branch on require_2fa.
type ChallengeResponse struct {
	TwoFactorToken string `json:"two_factor_token"`
	Require2FA     bool   `json:"require_2fa"`
}

func writeLoginResult(w http.ResponseWriter, status int, result *auth.LoginResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if result.SecondFactorRequired() {
		json.NewEncoder(w).Encode(ChallengeResponse{
			TwoFactorToken: result.ChallengeToken,
			Require2FA:     true,
		})
		return
	}

	json.NewEncoder(w).Encode(AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresAt:    result.Tokens.ExpiresAt.Unix(),
		User:         result.Account,
	})
}

// writeAuthError maps the engine's sentinel errors onto stable machine
// codes; anything unrecognized is an internal fault and stays opaque.
func writeAuthError(w http.ResponseWriter, err error) {
	switch err {
	case auth.ErrInvalidCredentials:
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeInvalidCredentials, "Invalid email or password", nil)
	case auth.ErrInvalidChallenge:
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeInvalidChallenge, "Invalid or expired 2FA token", nil)
	case auth.ErrInvalidCode:
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeInvalidCode, "Invalid 2FA code", nil)
	case auth.ErrInvalidSession:
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeInvalidSession, "Invalid refresh token", nil)
	case auth.ErrAlreadyEnrolled:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeAlreadyEnrolled, "2FA is already enabled. Disable it first.", nil)
	case auth.ErrSetupNotStarted:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeSetupNotStarted, "2FA setup not started", nil)
	case auth.ErrMFAMandatory:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeMfaMandatory, "2FA is mandatory for corporate accounts", nil)
	case auth.ErrConflict:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Email or username already in use", nil)
	case auth.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Account not found", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal error", nil)
	}
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := validator.ValidateEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	result, err := h.authSvc.Register(auth.RegisterParams{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeLoginResult(w, http.StatusCreated, result)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeLoginResult(w, http.StatusOK, result)
}

type Complete2FARequest struct {
	TwoFactorToken string `json:"two_factor_token"`
	Code           string `json:"code"`
}

func (h *AuthHandler) Complete2FA(w http.ResponseWriter, r *http.Request) {
	var req Complete2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := h.authSvc.CompleteSecondFactor(req.TwoFactorToken, req.Code)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeLoginResult(w, http.StatusOK, result)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := h.authSvc.Refresh(req.RefreshToken)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeLoginResult(w, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.authSvc.Logout(req.RefreshToken); err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	account, err := h.authSvc.CurrentUser(claims.UserID)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	if err := h.authSvc.ChangePassword(claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TwoFactorSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

func (h *AuthHandler) Setup2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	secret, uri, err := h.authSvc.EnrollMFAStart(claims.UserID)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TwoFactorSetupResponse{Secret: secret, ProvisioningURI: uri})
}

// Setup2FAQR renders the pending provisioning URI as a PNG. The account
// must already have called Setup2FA.
func (h *AuthHandler) Setup2FAQR(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	account, err := h.authSvc.CurrentUser(claims.UserID)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	if account.TwoFactorSecret == nil || *account.TwoFactorSecret == "" {
		writeAuthError(w, auth.ErrSetupNotStarted)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	uri := provisioningURI(account)

	png, err := auth.ProvisioningQR(uri, size)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// provisioningURI rebuilds the otpauth URI from the stored pending secret
// so the QR endpoint does not need a second Setup2FA round trip.
func provisioningURI(account *models.Account) string {
	return "otpauth://totp/LinkVault:" + url.PathEscape(account.Email) +
		"?secret=" + *account.TwoFactorSecret + "&issuer=LinkVault"
}

type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandler) VerifySetup2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := h.authSvc.EnrollMFAVerify(claims.UserID, req.Code)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeLoginResult(w, http.StatusOK, result)
}

func (h *AuthHandler) Disable2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	if err := h.authSvc.DisableMFA(claims.UserID); err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
