package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/caloriediary/go-diary-client/diary"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const emailContextKey contextKey = "email"

const tokenLifetime = 24 * time.Hour

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed login request.")
		return
	}

	s.lock.RLock()
	acct, ok := s.users[req.Email]
	s.lock.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := s.issueToken(req.Email)
	if err != nil {
		s.log.Err(err).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Could not create a session.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  acct.user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req diary.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed registration request.")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	s.lock.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.lock.Unlock()
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.lock.Unlock()
		writeError(w, http.StatusInternalServerError, "Could not create the account.")
		return
	}

	user := diary.User{
		ID:    uuid.New().String(),
		Name:  req.FullName,
		Email: req.Email,
	}
	s.users[req.Email] = &account{
		user:         user,
		passwordHash: hash,
		goalCalories: defaultGoalCalories,
	}
	s.lock.Unlock()

	if !s.autoLogin {
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Account created. Please log in with your new details.",
		})
		return
	}

	token, err := s.issueToken(req.Email)
	if err != nil {
		s.log.Err(err).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Could not create a session.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user":    user,
		"message": "Welcome aboard.",
	})
}

func (s *Server) issueToken(email string) (string, error) {
	now := s.nowTime()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireToken validates the bearer token and stashes the subject email in
// the request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token.")
			return
		}

		parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.nowTime))
		if err != nil || !parsed.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		claims := parsed.Claims.(*jwt.RegisteredClaims)
		ctx := context.WithValue(r.Context(), emailContextKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func emailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailContextKey).(string)
	return email
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
