package handler

import (
	"bytes"
	"errors"
	"net/http"

	"stockwatch/internal/app/session"
	"stockwatch/internal/app/user"
	"stockwatch/internal/app/view"
	"stockwatch/internal/pkg/errs"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/resp"
)

// renderPage writes page with the given status.
func renderPage(w http.ResponseWriter, r *http.Request, deps *AppDeps, status int, page string, data view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	// render before writing the status so a template error can still become a 500
	var buf bytes.Buffer
	if err := deps.Views.Render(&buf, page, data); err != nil {
		logx.FromContext(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, errs.NewError(errs.ErrUnknown).Message, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// renderFormError re-renders a form page with the message of customErr.
func renderFormError(w http.ResponseWriter, r *http.Request, deps *AppDeps, page string, data view.Page, customErr *errs.CustomError) {
	data.Message = customErr.Message
	renderPage(w, r, deps, customErr.Status, page, data)
}

// respondUnknown logs err and answers with the generic server error.
func respondUnknown(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logx.FromContext(r.Context()).Error().Err(err).Msg(msg)
	resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
}

// currentUser loads the signed-in user. When it returns false the response
// has already been written: a session whose user no longer exists is ended
// and redirected to /login, a store failure is answered with a 500.
func currentUser(w http.ResponseWriter, r *http.Request, deps *AppDeps) (*user.User, bool) {
	userID, ok := session.UserID(r.Context())
	if !ok {
		resp.Redirect(w, r, "/login")
		return nil, false
	}

	u, err := deps.Users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logx.FromContext(r.Context()).Warn().Int64("user_id", userID).Msg("Session refers to a missing user")
			if err := deps.Sessions.Destroy(w, r); err != nil {
				logx.FromContext(r.Context()).Error().Err(err).Msg("Failed to destroy orphaned session")
			}
			resp.Redirect(w, r, "/login")
			return nil, false
		}
		respondUnknown(w, r, err, "Failed to load current user")
		return nil, false
	}
	return u, true
}
