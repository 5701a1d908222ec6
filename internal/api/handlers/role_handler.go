package handlers

import (
	"encoding/json"
	"net/http"

	"linkvault/internal/api/middleware"
	"linkvault/internal/engine/orgs"
	"linkvault/internal/pkg/errors"
)

type RoleHandler struct {
	orgSvc *orgs.Service
}

func NewRoleHandler(orgSvc *orgs.Service) *RoleHandler {
	return &RoleHandler{orgSvc: orgSvc}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	roles, err := h.orgSvc.ListRoles(claims.UserID, pathParam(r, "org_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roles)
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Role name is required", nil)
		return
	}

	role, err := h.orgSvc.CreateRole(claims.UserID, pathParam(r, "org_id"), req.Name, req.Description)
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(role)
}

func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	err := h.orgSvc.AssignRole(claims.UserID, pathParam(r, "org_id"), pathParam(r, "role_id"), pathParam(r, "member_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Role assigned"})
}

func (h *RoleHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	err := h.orgSvc.RevokeRole(claims.UserID, pathParam(r, "org_id"), pathParam(r, "role_id"), pathParam(r, "member_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) MemberRoles(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	roles, err := h.orgSvc.MemberRoles(claims.UserID, pathParam(r, "org_id"), pathParam(r, "member_id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roles)
}
