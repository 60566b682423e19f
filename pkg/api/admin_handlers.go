package api

import (
	"net/http"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/observability"
)

// listAdmins handles GET /admin
func (s *Server) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.store.ListAdmins(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if admins == nil {
		admins = []*auth.User{}
	}
	_ = httputil.WriteSuccess(w, admins)
}

// adminTest handles GET /admin/test
func (s *Server) adminTest(w http.ResponseWriter, r *http.Request) {
	httputil.WriteMessage(w, "You are an admin")
}

// createAdmin handles POST /admin/create
func (s *Server) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	admin, err := s.auth.CreateAccount(r.Context(), req.Email, req.Password, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).WithField("admin_id", admin.ID).Info("admin created")
	_ = httputil.WriteCreated(w, AdminResponse{Message: "Admin created", Admin: admin})
}

// updateAdmin handles PUT /admin/{id}. A changed admin flag reaches the
// user's token on their next login.
func (s *Server) updateAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req AdminUpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.auth.UpdateAccount(r.Context(), id, auth.AccountUpdate{
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).
		WithFields(map[string]interface{}{"target_id": user.ID, "is_admin": user.IsAdmin}).
		Info("user updated by admin")
	_ = httputil.WriteSuccess(w, AdminResponse{Message: "Admin updated", Admin: user})
}

// deleteAdmin handles DELETE /admin/{id}
func (s *Server) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).WithField("target_id", id).Info("user deleted by admin")
	httputil.WriteMessage(w, "Admin deleted")
}
