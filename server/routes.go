package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	RouteHome            = "/"
	RouteDiary           = "/diary"
	RouteLogin           = "/login"
	RouteRegister        = "/register"
	RouteRegisterSuccess = "/register/success"
	RouteMeals           = "/meals"
	RouteLogout          = "/logout"
)

func (s *Server) initRoutes() {
	root := chi.NewRouter()
	root.Use(s.LoggingMiddleware, s.RecoverMiddleware)

	// Guarded views
	root.Group(func(r chi.Router) {
		r.Use(s.RequireSession)
		r.Get(RouteDiary, s.DashboardHandler())
		r.Post(RouteMeals, s.AddMealHandler())
	})

	// Open views
	root.Get(RouteHome, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDiary, http.StatusSeeOther)
	})
	root.Get(RouteLogin, s.LoginPageHandler())
	root.Post(RouteLogin, s.LoginPostHandler())
	root.Get(RouteRegister, s.RegisterPageHandler())
	root.Post(RouteRegister, s.RegisterPostHandler())
	root.Get(RouteRegisterSuccess, s.RegisterSuccessHandler())
	root.Post(RouteLogout, s.LogoutHandler())

	s.router = root
}
