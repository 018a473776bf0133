// Package server contains everything related to the Server
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/trivia/internal/client"
	"github.com/starquake/trivia/internal/config"
	"github.com/starquake/trivia/internal/metrics"
	"github.com/starquake/trivia/internal/store"
	"github.com/starquake/trivia/internal/trivia"
)

// Option configures the server.
type Option func(*options)

type options struct {
	serviceOpts []trivia.Option
}

// WithServiceOptions passes options to the trivia service, such as a deterministic quiz random source.
func WithServiceOptions(opts ...trivia.Option) Option {
	return func(o *options) {
		o.serviceOpts = append(o.serviceOpts, opts...)
	}
}

// NewServer creates a new server.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	stores *store.Stores,
	m *metrics.Metrics,
	opts ...Option,
) (http.Handler, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientHandler, err := client.Handler(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating client handler: %w", err)
	}

	service := trivia.NewService(stores.Questions, stores.Categories, o.serviceOpts...)

	mux := http.NewServeMux()
	addRoutes(mux, logger, service, stores, m, clientHandler)

	var handler http.Handler = mux
	handler = m.Middleware(handler)
	handler = corsMiddleware(cfg.CORSAllowedOrigins, handler)
	handler = recoverMiddleware(logger, handler)
	handler = loggingMiddleware(logger, handler)
	handler = requestIDMiddleware(handler)

	return handler, nil
}
