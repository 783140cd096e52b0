// Package server renders the calorie diary UI over localhost HTTP. It is a
// pure presentation layer: every state transition goes through the session
// store and every piece of data comes from the api client or the stats feed.
package server

import (
	"net/http"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/feed"
	"github.com/caloriediary/go-diary-client/internal/config"
	"github.com/caloriediary/go-diary-client/session"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	config  config.Config
	client  *api.Client
	session *session.Store
	feed    *feed.StatsFeed
	router  chi.Router
	log     zerolog.Logger
}

func New(cfg config.Config, client *api.Client, store *session.Store, statsFeed *feed.StatsFeed, log zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if client == nil {
		return nil, errors.New("[server.New] api client is required")
	}
	if store == nil {
		return nil, errors.New("[server.New] session store is required")
	}
	if statsFeed == nil {
		return nil, errors.New("[server.New] stats feed is required")
	}

	s := &Server{
		config:  cfg,
		client:  client,
		session: store,
		feed:    statsFeed,
		log:     log,
	}
	s.initRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
