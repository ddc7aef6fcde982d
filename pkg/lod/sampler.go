package lod

import (
	"math/rand"
	"sync"
	"time"

	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/metrics"
)

// Sampler applies a budget table to candidate sets. The zero value is not
// usable; construct with NewSampler. Safe for concurrent use; the internal
// RNG is guarded by a mutex since sampling is far from the hot path once the
// viewport query has already run.
type Sampler struct {
	table *BudgetTable

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler with a time-seeded RNG.
func NewSampler(tiers []config.BudgetTier) (*Sampler, error) {
	return NewSamplerWithSeed(tiers, time.Now().UnixNano())
}

// NewSamplerWithSeed creates a sampler with a fixed seed. Fixed seeds make
// sampling reproducible for tests and for comparing renders across runs.
func NewSamplerWithSeed(tiers []config.BudgetTier, seed int64) (*Sampler, error) {
	table, err := NewBudgetTable(tiers)
	if err != nil {
		return nil, err
	}
	return &Sampler{
		table: table,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Sample reduces candidates to the budget for the given viewport span,
// choosing uniformly at random without replacement. When the candidate set
// already fits the budget, or no tier applies, candidates is returned
// unchanged (and unshuffled). The input slice is never mutated.
func (s *Sampler) Sample(candidates []int32, span float64) []int32 {
	timer := metrics.NewTimer("lod_sample")
	result := s.sample(candidates, span)
	metrics.QueryLatency.WithLabelValues("sample").Observe(float64(timer.Stop().Nanoseconds()))
	metrics.SampleSize.Observe(float64(len(result)))
	return result
}

func (s *Sampler) sample(candidates []int32, span float64) []int32 {
	budget, ok := s.table.BudgetFor(span)
	if !ok || len(candidates) <= budget {
		return candidates
	}

	// Partial Fisher-Yates: only the first budget positions need settling,
	// so a 10M-candidate set with a 2000-point budget does 2000 swaps.
	pool := make([]int32, len(candidates))
	copy(pool, candidates)

	s.mu.Lock()
	for i := 0; i < budget; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	s.mu.Unlock()

	return pool[:budget]
}

// Budget exposes the tier lookup for callers that want to report the budget
// alongside the sample.
func (s *Sampler) Budget(span float64) (int, bool) {
	return s.table.BudgetFor(span)
}
