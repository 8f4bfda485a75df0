package ops

import (
	"math/rand/v2"
	"sync"

	audit "formview/pkg/platform/audit"
)

// Sampler keeps a configurable fraction of events per action.
type Sampler struct {
	mu          sync.RWMutex
	defaultRate float64
	rates       map[audit.Action]float64
	roll        func() float64
}

// NewSampler returns a sampler keeping defaultRate of events. Rates are
// clamped to [0, 1].
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate: clamp(defaultRate),
		rates:       make(map[audit.Action]float64),
		roll:        rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
}

// SetRate overrides the rate for one action.
func (s *Sampler) SetRate(action audit.Action, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[action] = clamp(rate)
}

// Keep reports whether an event with action should be kept.
func (s *Sampler) Keep(action audit.Action) bool {
	s.mu.RLock()
	rate, ok := s.rates[action]
	if !ok {
		rate = s.defaultRate
	}
	s.mu.RUnlock()
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.roll() < rate
}

func clamp(rate float64) float64 {
	return min(max(rate, 0), 1)
}
