package mssql

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Router hands out one client per database, opening lazily and caching
// connections for reuse. A fleet sync touches many databases on the same
// server, so clients are shared across operations rather than reopened
// per call.
type Router struct {
	config Config

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRouter creates a Router that connects with config, overriding only
// the database name per client.
func NewRouter(config Config) *Router {
	return &Router{
		config:  config,
		clients: map[string]*Client{},
	}
}

// Client returns a client bound to the named database, opening a
// connection on first use.
func (r *Router) Client(ctx context.Context, database string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[database]; ok {
		return client, nil
	}

	cfg := r.config
	cfg.Database = database
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to database %s", database)
	}

	r.clients[database] = client
	return client, nil
}

// Close closes every opened client, returning the first error seen.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, client := range r.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.clients = map[string]*Client{}

	return firstErr
}
