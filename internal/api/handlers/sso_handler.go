package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apiContext "linkvault/internal/api/context"
	"linkvault/internal/engine/sso"
	"linkvault/internal/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

type SSOHandler struct {
	resolver *sso.Resolver
}

func NewSSOHandler(resolver *sso.Resolver) *SSOHandler {
	return &SSOHandler{resolver: resolver}
}

func providerParam(r *http.Request) string {
	if params, ok := r.Context().Value(apiContext.Params).(httprouter.Params); ok {
		return params.ByName("provider")
	}
	return ""
}

// Authorize returns the provider's authorization URL; the frontend
// redirects the user there.
func (h *SSOHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	provider := providerParam(r)
	state := r.URL.Query().Get("state")

	url, err := h.resolver.AuthorizeURL(provider, state)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeUnsupportedProvider, "Unsupported provider: "+provider, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// Callback handles the provider redirect: code exchange, account
// resolution, then either tokens or a 2FA challenge.
func (h *SSOHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeProviderError, errParam, nil)
		return
	}

	provider := providerParam(r)
	code := r.URL.Query().Get("code")
	if code == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing authorization code", nil)
		return
	}

	result, err := h.resolver.Callback(r.Context(), provider, code)
	if err != nil {
		switch {
		case err == sso.ErrUnsupportedProvider:
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeUnsupportedProvider, "Unsupported provider: "+provider, nil)
		case stderrors.Is(err, sso.ErrProvider):
			errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeProviderError, "SSO login failed", nil)
		default:
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "SSO login failed", nil)
		}
		return
	}

	writeLoginResult(w, http.StatusOK, result)
}
