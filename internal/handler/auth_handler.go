/*
Package handler wires the HTTP routes of the watchlist site to the user
store, the quote fetcher and the session manager.
*/
package handler

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"stockwatch/internal/app/session"
	"stockwatch/internal/app/user"
	"stockwatch/internal/app/view"
	"stockwatch/internal/pkg/errs"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/req"
	"stockwatch/internal/pkg/resp"
	"stockwatch/internal/pkg/validate"
)

const (
	// maxPasswordBytes is the longest input bcrypt hashes without truncation.
	maxPasswordBytes = 72

	// maxUsernameLen matches users.username VARCHAR(64).
	maxUsernameLen = 64
)

// HandleLoginPage renders the login form. Signed-in users go to the dashboard.
func HandleLoginPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.UserID(r.Context()); ok {
			resp.Redirect(w, r, "/")
			return
		}
		renderPage(w, r, deps, http.StatusOK, view.PageLogin, view.Page{Title: "Log in"})
	}
}

// HandleLogin checks the submitted credentials and starts a session.
// Unknown usernames and wrong passwords get the same message.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.ParseForm(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := req.FormValue(r, "username")
		password := r.PostFormValue("password")
		page := view.Page{Title: "Log in", Form: view.Form{Username: username}}

		invalid := func() {
			renderFormError(w, r, deps, view.PageLogin, page, errs.NewError(errs.ErrInvalidCredentials))
		}

		if username == "" || password == "" {
			invalid()
			return
		}

		u, err := deps.Users.FindByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				logx.FromContext(r.Context()).Info().Msg("Login failed: unknown username")
				invalid()
				return
			}
			respondUnknown(w, r, err, "Login: user lookup failed")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			logx.FromContext(r.Context()).Info().Int64("user_id", u.ID).Msg("Login failed: password mismatch")
			invalid()
			return
		}

		if err := deps.Sessions.Start(w, r, u.ID); err != nil {
			respondUnknown(w, r, err, "Login: failed to start session")
			return
		}

		logx.FromContext(r.Context()).Info().Int64("user_id", u.ID).Msg("User logged in")
		resp.Redirect(w, r, "/")
	}
}

// HandleRegisterPage renders the registration form.
func HandleRegisterPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, deps, http.StatusOK, view.PageRegister, view.Page{Title: "Register"})
	}
}

// HandleRegister validates the form, creates the account with an empty
// watchlist and sends the user to the login form.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.ParseForm(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := req.FormValue(r, "username")
		password := r.PostFormValue("password")
		confirmation := r.PostFormValue("confirmation")
		page := view.Page{Title: "Register", Form: view.Form{Username: username}}

		if code := checkRegistration(username, password, confirmation); code != 0 {
			renderFormError(w, r, deps, view.PageRegister, page, errs.NewError(code))
			return
		}

		_, err := deps.Users.FindByUsername(r.Context(), username)
		switch {
		case err == nil:
			renderFormError(w, r, deps, view.PageRegister, page, errs.NewError(errs.ErrUsernameTaken))
			return
		case !errors.Is(err, user.ErrNotFound):
			respondUnknown(w, r, err, "Register: user lookup failed")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			respondUnknown(w, r, err, "Register: failed to hash password")
			return
		}

		created, err := deps.Users.Create(r.Context(), username, string(hash), []string{})
		if err != nil {
			if errors.Is(err, user.ErrAlreadyExists) {
				logx.FromContext(r.Context()).Warn().Msg("Registration conflict: username already exists")
				renderFormError(w, r, deps, view.PageRegister, page, errs.NewError(errs.ErrUsernameTaken))
				return
			}
			respondUnknown(w, r, err, "Register: failed to create user")
			return
		}

		logx.FromContext(r.Context()).Info().Int64("user_id", created.ID).Msg("User registered")
		resp.Redirect(w, r, "/login")
	}
}

// checkRegistration returns the first failing rule as an error code, or 0.
// The order decides which message a user sees when several rules fail.
func checkRegistration(username, password, confirmation string) int {
	if password != confirmation {
		return errs.ErrPasswordMismatch
	}

	usernameOK := validate.Charset(username, validate.UsernameSet)
	passwordOK := validate.Charset(password, validate.PasswordSet)

	switch {
	case !usernameOK && !passwordOK:
		return errs.ErrInvalidUsernameAndPassword
	case !usernameOK:
		return errs.ErrInvalidUsername
	case !passwordOK:
		return errs.ErrInvalidPassword
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return errs.ErrUsernameTooLong
	case len(password) > maxPasswordBytes:
		return errs.ErrPasswordTooLong
	}
	return 0
}

// HandleLogout ends the session and returns to the dashboard, which in turn
// sends the now anonymous user to /login.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Sessions.Destroy(w, r); err != nil {
			logx.FromContext(r.Context()).Error().Err(err).Msg("Logout: failed to delete session")
		}
		resp.Redirect(w, r, "/")
	}
}
