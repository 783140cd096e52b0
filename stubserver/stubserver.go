// Package stubserver is an in-memory stand-in for the calorie backend so the
// client can be run and tested end to end without the production service. It
// speaks the same REST surface: /api/login, /api/register, /api/consumption
// and /api/stats.
package stubserver

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/caloriediary/go-diary-client/diary"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const defaultGoalCalories = 2000

type account struct {
	user         diary.User
	passwordHash []byte
	goalCalories int
}

// Server implements the backend REST surface over in-memory state.
type Server struct {
	secret    []byte
	autoLogin bool
	nowTime   func() time.Time
	log       zerolog.Logger

	lock  sync.RWMutex
	users map[string]*account
	meals map[string][]diary.MealEntry

	router chi.Router
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithAutoLogin makes registration answer 200 with a token (immediate login)
// instead of the default 201 created-pending response.
func WithAutoLogin(enabled bool) Option {
	return func(s *Server) {
		s.autoLogin = enabled
	}
}

// WithSecret sets the HS256 signing secret for issued tokens.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New initializes a stub backend.
func New(options ...Option) *Server {
	s := &Server{
		secret:  []byte("caloried-stub-secret"),
		nowTime: time.Now,
		log:     zerolog.New(os.Stderr).With().Timestamp().Logger(),
		users:   make(map[string]*account),
		meals:   make(map[string][]diary.MealEntry),
	}

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	root := chi.NewRouter()
	root.Use(s.loggingMiddleware)

	root.Post("/api/login", s.handleLogin)
	root.Post("/api/register", s.handleRegister)

	root.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/api/consumption", s.handleConsumption)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = root
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.nowTime()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("stub request")
	})
}

// SeedUser registers an account directly, bypassing the HTTP surface.
func (s *Server) SeedUser(user diary.User, password string, goalCalories int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if goalCalories <= 0 {
		goalCalories = defaultGoalCalories
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.users[user.Email] = &account{
		user:         user,
		passwordHash: hash,
		goalCalories: goalCalories,
	}
	return nil
}
