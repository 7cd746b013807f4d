// Package healthcheck provides a small named-check HTTP health endpoint,
// grounded on the Name()/Healthy(ctx) shape exercised by
// private/healthcheck/server_test.go.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("healthcheck")

// ErrCheckExists is returned by AddCheck when a check with the same name
// has already been registered.
var ErrCheckExists = Error.New("check already exists")

// Check is one named health probe.
type Check interface {
	Name() string
	Healthy(ctx context.Context) bool
}

// Server answers GET /healthz (all checks) and GET /healthz/{name} (one
// check) with JSON {name: healthy} bodies, returning 503 if any checked
// probe reports unhealthy.
type Server struct {
	mu     sync.RWMutex
	checks map[string]Check
}

func NewServer() *Server {
	return &Server{checks: make(map[string]Check)}
}

// AddCheck registers check, failing with ErrCheckExists if its name is
// already taken.
func (s *Server) AddCheck(check Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.checks[check.Name()]; exists {
		return ErrCheckExists
	}
	s.checks[check.Name()] = check
	return nil
}

// ServeHTTP implements http.Handler: GET / reports every registered check;
// GET /{name} reports one check, or 404 if no check has that name.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	for len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if name != "" {
		check, ok := s.checks[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		healthy := check.Healthy(r.Context())
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(struct {
			Healthy bool `json:"healthy"`
		}{Healthy: healthy})
		return
	}

	results := make(map[string]bool, len(s.checks))
	allHealthy := true
	for checkName, check := range s.checks {
		healthy := check.Healthy(r.Context())
		results[checkName] = healthy
		if !healthy {
			allHealthy = false
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(results)
}
