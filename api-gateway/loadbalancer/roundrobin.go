package loadbalancer

import (
	"sync"

	"github.com/tair/storefront/pkg/logger"
)

// RoundRobin rotates over storefront instances.
type RoundRobin struct {
	servers []string
	current int
	mu      sync.Mutex
}

// NewRoundRobin creates a round-robin pool over the given instance URLs.
func NewRoundRobin(servers []string) *RoundRobin {
	if len(servers) == 0 {
		servers = []string{"http://localhost:8080"}
	}

	logger.Logger.Info().
		Int("instance_count", len(servers)).
		Strs("instances", servers).
		Msg("Round-robin pool initialized")

	return &RoundRobin{servers: servers}
}

// Next returns the next instance in rotation.
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(rr.servers) == 0 {
		return ""
	}

	server := rr.servers[rr.current]
	rr.current = (rr.current + 1) % len(rr.servers)
	return server
}

// Servers returns a copy of the instance list.
func (rr *RoundRobin) Servers() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string{}, rr.servers...)
}

// Stats returns pool statistics.
func (rr *RoundRobin) Stats() map[string]interface{} {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return map[string]interface{}{
		"algorithm":      "round-robin",
		"instance_count": len(rr.servers),
		"instances":      rr.servers,
		"current_index":  rr.current,
	}
}
