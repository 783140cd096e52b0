package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	"github.com/caloriediary/go-diary-client/session"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
	Next    string
}

// LoginPageHandler renders the login page
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
			Next:    r.URL.Query().Get("next"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render login template")
		}
	}
}

// LoginPostHandler submits credentials through the session store. On success
// the originally requested location is restored; on failure the login page is
// shown again with the error message and the email preserved.
func (s *Server) LoginPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		next := r.FormValue("next")

		if _, err := s.session.Login(r.Context(), email, password); err != nil {
			s.log.Warn().Err(err).Msg("Login failed")
			query := url.Values{}
			query.Set("error", api.Message(err))
			query.Set("email", email)
			if next != "" {
				query.Set("next", next)
			}
			http.Redirect(w, r, RouteLogin+"?"+query.Encode(), http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
	}
}

// RegisterPageData contains data for rendering the registration page
type RegisterPageData struct {
	AppName string
	Error   string
	Email   string
}

// RegisterPageHandler renders the registration page
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("register.html")
	if err != nil {
		panic("Failed to parse register template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := RegisterPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render register template")
		}
	}
}

// RegisterPostHandler submits the registration form and branches on the
// store's two-outcome contract: straight to the diary when the backend logged
// the user in immediately, or to the confirmation view when a separate login
// step is still required.
func (s *Server) RegisterPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		input := diary.RegisterInput{
			FullName:       r.FormValue("fullName"),
			Email:          r.FormValue("email"),
			Password:       r.FormValue("password"),
			Age:            r.FormValue("age"),
			Height:         r.FormValue("height"),
			Weight:         r.FormValue("weight"),
			Sex:            r.FormValue("sex"),
			WorkoutDays:    r.FormValue("workoutDays"),
			Goal:           r.FormValue("goal"),
			ReferralSource: r.FormValue("referralSource"),
		}

		outcome, err := s.session.Register(r.Context(), input)
		if err != nil {
			s.log.Warn().Err(err).Msg("Registration failed")
			query := url.Values{}
			query.Set("error", api.Message(err))
			query.Set("email", input.Email)
			http.Redirect(w, r, RouteRegister+"?"+query.Encode(), http.StatusSeeOther)
			return
		}

		switch result := outcome.(type) {
		case session.RegisteredAndLoggedIn:
			http.Redirect(w, r, RouteDiary, http.StatusSeeOther)
		case session.RegisteredPendingConfirmation:
			query := url.Values{}
			if result.Message != "" {
				query.Set("message", result.Message)
			}
			query.Set("email", input.Email)
			http.Redirect(w, r, RouteRegisterSuccess+"?"+query.Encode(), http.StatusSeeOther)
		}
	}
}

// SuccessPageData contains data for the registration confirmation view
type SuccessPageData struct {
	AppName string
	Message string
	Email   string
}

// RegisterSuccessHandler renders the "account created, now log in" view
func (s *Server) RegisterSuccessHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("register_success.html")
	if err != nil {
		panic("Failed to parse register success template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		message := r.URL.Query().Get("message")
		if message == "" {
			message = "Registration succeeded. You can now log in with your details."
		}
		data := SuccessPageData{
			AppName: s.config.GetAppName(),
			Message: message,
			Email:   r.URL.Query().Get("email"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render register success template")
		}
	}
}

// LogoutHandler ends the session unconditionally
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.session.Logout()
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// safeNext keeps post-login redirects on this site. Scheme-relative targets
// ("//host") and the backslash variant browsers normalize to one are rejected
// along with anything not rooted at "/".
func safeNext(next string) string {
	if next == "" || next[0] != '/' {
		return RouteDiary
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return RouteDiary
	}
	return next
}
