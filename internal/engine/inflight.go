// internal/engine/inflight.go
package engine

import (
	"fmt"
	"sync"

	"github.com/adspilot/engine/internal/types"
)

// inflightSet guards against concurrent evaluations of the same
// (rule, campaign) pair. Correctness of budget math relies on at most one
// in-flight action per pair; overlapping scheduler ticks or a second engine
// instance sharing the process must not race the same campaign.
//
// Explicit keyed set instead of a module-global map so the guard is owned
// and injected per orchestrator instance (multi-instance deployments guard
// cross-process via the scheduler's single-run gate).
type inflightSet struct {
	mu    sync.Mutex
	pairs map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{pairs: make(map[string]struct{})}
}

// acquire reserves the pair, returning false if it is already in flight.
func (s *inflightSet) acquire(ruleID types.RuleID, ref types.CampaignRef) bool {
	key := pairKey(ruleID, ref)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pairs[key]; busy {
		return false
	}
	s.pairs[key] = struct{}{}
	return true
}

// release frees the pair for subsequent runs.
func (s *inflightSet) release(ruleID types.RuleID, ref types.CampaignRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, pairKey(ruleID, ref))
}

func pairKey(ruleID types.RuleID, ref types.CampaignRef) string {
	return fmt.Sprintf("%s:%d:%d", ruleID, ref.TokoID, ref.CampaignID)
}
