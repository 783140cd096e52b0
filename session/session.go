package session

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store owns the authentication state machine: anonymous (empty token) or
// authenticated (token set), with an orthogonal loading flag raised during an
// in-flight login or register call. It is hydrated once at construction from
// the vault and is the only writer of the vault slots and of the api client's
// default bearer header.
type Store struct {
	client *api.Client
	vault  Vault
	log    zerolog.Logger

	lock    sync.RWMutex
	token   string
	user    *diary.User
	loading bool
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// New initializes a Store, hydrates it from the vault and synchronizes the
// api client's bearer header with whatever token was restored.
func New(client *api.Client, vault Vault, options ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, errors.New("[session.New] api client is required")
	}
	if vault == nil {
		return nil, errors.New("[session.New] vault is required")
	}

	store := &Store{
		client: client,
		vault:  vault,
		log:    zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}

	for _, opt := range options {
		opt(store)
	}

	if err := store.hydrate(); err != nil {
		return nil, errors.Wrap(err, "[session.New] hydrate")
	}

	return store, nil
}

// hydrate restores token and user from the vault. A missing token slot means
// anonymous. An unparsable user slot is treated as absent; the session stays
// valid on the token alone.
func (s *Store) hydrate() error {
	token, err := s.vault.ReadToken()
	if err != nil && !interrors.Is(err, interrors.ErrSlotNotFound) {
		return errors.Wrap(err, "vault.ReadToken")
	}

	var user *diary.User
	raw, err := s.vault.ReadUser()
	if err != nil && !interrors.Is(err, interrors.ErrSlotNotFound) {
		return errors.Wrap(err, "vault.ReadUser")
	}
	if len(raw) > 0 {
		var u diary.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn().Err(err).Msg("Discarding unparsable user slot")
		} else {
			user = &u
		}
	}

	s.lock.Lock()
	s.token = token
	s.user = user
	s.lock.Unlock()

	// Header sync happens on every token change, hydration included.
	s.client.SetToken(token)
	return nil
}

// Login exchanges credentials for a session. On success the store transitions
// to authenticated and persists token and user (when provided); on failure the
// state is left untouched and the error is propagated without retry.
func (s *Store) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Login] client.Login")
	}

	if err := s.persist(resp.Token, resp.User); err != nil {
		return nil, errors.Wrap(err, "[Store.Login] persist")
	}

	return resp, nil
}

// RegisterOutcome is the two-branch result of Register. Callers must handle
// both branches; there is no implicit third state.
type RegisterOutcome interface {
	registerOutcome()
}

// RegisteredAndLoggedIn means the backend answered with a token outside the
// created-pending status: the session is already authenticated and persisted.
type RegisteredAndLoggedIn struct {
	Token string
	User  *diary.User
}

// RegisteredPendingConfirmation means the account was created but a separate
// login step is still required. The session is untouched.
type RegisteredPendingConfirmation struct {
	Message string
}

func (RegisteredAndLoggedIn) registerOutcome()         {}
func (RegisteredPendingConfirmation) registerOutcome() {}

// Register submits a registration. A response carrying a token with a status
// other than 201 is treated as an immediate login; a 201 leaves the session
// anonymous and hands the confirmation message back to the caller.
func (s *Store) Register(ctx context.Context, input diary.RegisterInput) (RegisterOutcome, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Register(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Register] client.Register")
	}

	if resp.Token != "" && resp.Status != http.StatusCreated {
		if err := s.persist(resp.Token, resp.User); err != nil {
			return nil, errors.Wrap(err, "[Store.Register] persist")
		}
		return RegisteredAndLoggedIn{Token: resp.Token, User: resp.User}, nil
	}

	return RegisteredPendingConfirmation{Message: resp.Message}, nil
}

// Logout unconditionally transitions to anonymous: both vault slots are
// removed, the in-memory state is cleared and the bearer header dropped.
func (s *Store) Logout() {
	if err := s.vault.DeleteToken(); err != nil && !interrors.Is(err, interrors.ErrSlotNotFound) {
		s.log.Warn().Err(err).Msg("Failed to remove token slot")
	}
	if err := s.vault.DeleteUser(); err != nil && !interrors.Is(err, interrors.ErrSlotNotFound) {
		s.log.Warn().Err(err).Msg("Failed to remove user slot")
	}

	s.lock.Lock()
	s.token = ""
	s.user = nil
	s.lock.Unlock()

	s.client.SetToken("")
}

// persist writes the new session to the vault first, then commits it to
// memory and synchronizes the bearer header. A vault failure leaves the
// previous state in place.
func (s *Store) persist(token string, user *diary.User) error {
	if err := s.vault.WriteToken(token); err != nil {
		return errors.Wrap(err, "vault.WriteToken")
	}

	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "marshal user")
		}
		if err := s.vault.WriteUser(raw); err != nil {
			return errors.Wrap(err, "vault.WriteUser")
		}
	} else {
		if err := s.vault.DeleteUser(); err != nil && !interrors.Is(err, interrors.ErrSlotNotFound) {
			return errors.Wrap(err, "vault.DeleteUser")
		}
	}

	s.lock.Lock()
	s.token = token
	s.user = user
	s.lock.Unlock()

	s.client.SetToken(token)
	return nil
}

func (s *Store) setLoading(v bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.loading = v
}

// Loading reports whether a login or register call is in flight. It is a UI
// hint, not a mutex.
func (s *Store) Loading() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loading
}

// IsAuthenticated holds exactly when a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the current session token, empty when anonymous.
func (s *Store) Token() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token
}

// User returns the current user, which may be nil even when authenticated.
func (s *Store) User() *diary.User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.user
}
