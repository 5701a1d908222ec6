package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "linkvault/internal/api/context"
	"linkvault/internal/api/handlers"
	"linkvault/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler    *handlers.AuthHandler
	SSOHandler     *handlers.SSOHandler
	OrgHandler     *handlers.OrgHandler
	RoleHandler    *handlers.RoleHandler
	ResetHandler   *handlers.ResetHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Handle))

	// Authentication
	router.POST("/api/auth/register", wrap(deps.AuthHandler.Register))
	router.POST("/api/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/auth/login/2fa", wrap(deps.AuthHandler.Complete2FA))
	router.POST("/api/auth/refresh", wrap(deps.AuthHandler.Refresh))
	router.POST("/api/auth/logout", wrap(deps.AuthHandler.Logout))

	// Password reset
	router.POST("/api/auth/password-reset/request", wrap(deps.ResetHandler.Request))
	router.POST("/api/auth/password-reset/confirm", wrap(deps.ResetHandler.Confirm))

	// SSO
	router.GET("/api/sso/:provider/authorize", wrap(deps.SSOHandler.Authorize))
	router.GET("/api/sso/:provider/callback", wrap(deps.SSOHandler.Callback))

	authMid := deps.AuthMiddleware

	// Current account
	router.GET("/api/auth/me", chain(deps.AuthHandler.Me, authMid.Handle))
	router.POST("/api/auth/change-password", chain(deps.AuthHandler.ChangePassword, authMid.Handle))

	// Two-factor enrollment
	router.GET("/api/auth/2fa/setup", chain(deps.AuthHandler.Setup2FA, authMid.Handle))
	router.GET("/api/auth/2fa/setup/qr", chain(deps.AuthHandler.Setup2FAQR, authMid.Handle))
	router.POST("/api/auth/2fa/setup/verify", chain(deps.AuthHandler.VerifySetup2FA, authMid.Handle))
	router.DELETE("/api/auth/2fa", chain(deps.AuthHandler.Disable2FA, authMid.Handle))

	// Organizations
	router.POST("/api/organizations", chain(deps.OrgHandler.Create, authMid.Handle))
	router.GET("/api/organizations/:org_id", chain(deps.OrgHandler.Get, authMid.Handle))
	router.PUT("/api/organizations/:org_id", chain(deps.OrgHandler.Update, authMid.Handle))
	router.GET("/api/organizations/:org_id/members", chain(deps.OrgHandler.Members, authMid.Handle))
	router.DELETE("/api/organizations/:org_id/members/:member_id", chain(deps.OrgHandler.RemoveMember, authMid.Handle))
	router.POST("/api/organizations/:org_id/invite", chain(deps.OrgHandler.Invite, authMid.Handle))

	// Invitation acceptance is public; the token is the credential.
	router.POST("/api/invitations/:token/accept", wrap(deps.OrgHandler.AcceptInvitation))

	// Roles
	router.GET("/api/organizations/:org_id/roles", chain(deps.RoleHandler.List, authMid.Handle))
	router.POST("/api/organizations/:org_id/roles", chain(deps.RoleHandler.Create, authMid.Handle))
	router.GET("/api/organizations/:org_id/roles/members/:member_id", chain(deps.RoleHandler.MemberRoles, authMid.Handle))
	router.POST("/api/organizations/:org_id/roles/:role_id/assign/:member_id", chain(deps.RoleHandler.Assign, authMid.Handle))
	router.DELETE("/api/organizations/:org_id/roles/:role_id/assign/:member_id", chain(deps.RoleHandler.Revoke, authMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
