package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "linkvault/internal/api/context"
	"linkvault/internal/api/middleware"
	"linkvault/internal/engine/orgs"
	"linkvault/internal/pkg/errors"
	"linkvault/internal/pkg/validator"
)

type OrgHandler struct {
	orgSvc *orgs.Service
}

func NewOrgHandler(orgSvc *orgs.Service) *OrgHandler {
	return &OrgHandler{orgSvc: orgSvc}
}

func pathParam(r *http.Request, name string) string {
	if params, ok := r.Context().Value(apiContext.Params).(httprouter.Params); ok {
		return params.ByName(name)
	}
	return ""
}

func writeOrgError(w http.ResponseWriter, err error) {
	switch err {
	case orgs.ErrForbidden:
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Admin privileges required", nil)
	case orgs.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
	case orgs.ErrNotMember:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Member not found in this organization", nil)
	case orgs.ErrAlreadyMember:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User is already a member", nil)
	case orgs.ErrConflict:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Email or username already in use", nil)
	case orgs.ErrInvalidInvitation:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Invitation not found or already used", nil)
	case orgs.ErrExpiredInvitation:
		errors.WriteError(w, http.StatusGone, errors.ErrCodeInvalidInput, "Invitation has expired", nil)
	case orgs.ErrRoleNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Role not found", nil)
	case orgs.ErrRoleScopeMismatch:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Role does not belong to this organization", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal error", nil)
	}
}

type CreateOrgRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization name is required", nil)
		return
	}

	org, err := h.orgSvc.Create(claims.UserID, req.Name, req.Domain)
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(org)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	org, err := h.orgSvc.Get(claims.UserID, pathParam(r, "org_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

type UpdateOrgRequest struct {
	Name   *string `json:"name"`
	Domain *string `json:"domain"`
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req UpdateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.orgSvc.Update(claims.UserID, pathParam(r, "org_id"), req.Name, req.Domain)
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

func (h *OrgHandler) Members(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	members, err := h.orgSvc.Members(claims.UserID, pathParam(r, "org_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

type InviteMemberRequest struct {
	Email  string `json:"email"`
	RoleID string `json:"role_id"`
}

func (h *OrgHandler) Invite(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	inv, err := h.orgSvc.Invite(claims.UserID, pathParam(r, "org_id"), req.Email, req.RoleID)
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

func (h *OrgHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	err := h.orgSvc.RemoveMember(claims.UserID, pathParam(r, "org_id"), pathParam(r, "member_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AcceptInvitationRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *OrgHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
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

	_, err := h.orgSvc.AcceptInvitation(pathParam(r, "token"), orgs.AcceptInvitationParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Account created successfully. Please log in."})
}
