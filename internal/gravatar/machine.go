package gravatar

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/arthub/internal/logging"
)

// State of the cached profile-photo fetch.
type State int

const (
	// StateInitial means no fetch has been attempted yet.
	StateInitial State = iota
	// StateLoading means a lookup is in flight.
	StateLoading
	// StateFound means the photo URL was resolved (possibly from cache).
	StateFound
	// StateNotFound means the email has no gravatar profile.
	StateNotFound
	// StateFailed means the profile or photo could not be reached.
	StateFailed
)

// Machine runs cached profile-photo fetches. It is re-enterable: Fetch
// may be called again from any settled state. Successful lookups are
// written to the injected Cache, and later fetches for the same email
// complete without a network call.
type Machine struct {
	client *Client
	cache  *Cache
	log    logging.Logger

	state State
	url   string
	err   error
}

func NewMachine(client *Client, cache *Cache, log logging.Logger) *Machine {
	return &Machine{client: client, cache: cache, log: log, state: StateInitial}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// URL returns the resolved photo URL; valid in StateFound.
func (m *Machine) URL() string { return m.url }

// Err returns the failure; valid in StateFailed.
func (m *Machine) Err() error { return m.err }

// Fetch runs one lookup for email and returns the settled state. A cache
// hit completes immediately with StateFound and no network call.
func (m *Machine) Fetch(ctx context.Context, email string) State {
	if url, ok := m.cache.lookup(email); ok {
		m.url, m.err, m.state = url, nil, StateFound
		return m.state
	}

	m.state = StateLoading
	url, err := m.client.FetchThumbnail(ctx, email)

	var missing *MissingProfileError
	switch {
	case err == nil:
		m.cache.store(email, url)
		m.url, m.err, m.state = url, nil, StateFound
	case errors.As(err, &missing):
		m.url, m.err, m.state = "", nil, StateNotFound
	default:
		m.log.Warn(ctx, "gravatar lookup failed", "email", email, "err", err)
		m.url, m.err, m.state = "", err, StateFailed
	}
	return m.state
}
