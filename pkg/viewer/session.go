// Package viewer ties the dataset, spatial index and LOD sampler together
// into an interactive map session. A Session serves viewport requests from
// an immutable snapshot and swaps in a new snapshot atomically when a
// dataset is (re)loaded, so pan/zoom requests never observe a half-built
// index.
package viewer

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/dataset"
	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/lod"
	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/record"
	"github.com/edatlas/galaxymap/pkg/spatial"
)

// snapshot pairs a dataset with the index built over it. The two always
// travel together; swapping the pair in one atomic store is what keeps
// queries consistent during reloads.
type snapshot struct {
	ds  *dataset.Dataset
	idx *spatial.Index
}

// Session is the viewer core. Safe for concurrent use: any number of View
// calls may run while Load swaps in a new dataset.
type Session struct {
	cfg     *config.Config
	sampler *lod.Sampler
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
}

// View is the answer to a viewport request: the sampled points to draw plus
// the counts the title bar reports.
type View struct {
	// Points to render, at most the tier budget for the request's span.
	Points []record.Canonical
	// Shown is len(Points).
	Shown int
	// Total is how many systems were inside the viewport before sampling.
	Total int
}

// Summary renders the count line shown in the map title.
func (v *View) Summary() string {
	return fmt.Sprintf("%d of %d systems shown", v.Shown, v.Total)
}

// NewSession creates a session from config. No dataset is loaded yet.
func NewSession(cfg *config.Config) (*Session, error) {
	sampler, err := lod.NewSampler(cfg.Sampler.Tiers)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:     cfg,
		sampler: sampler,
		logger:  logger.With(zap.String("component", "viewer")),
	}, nil
}

// NewSessionWithSeed is NewSession with a deterministic sampler, for tests
// and reproducible renders.
func NewSessionWithSeed(cfg *config.Config, seed int64) (*Session, error) {
	sampler, err := lod.NewSamplerWithSeed(cfg.Sampler.Tiers, seed)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:     cfg,
		sampler: sampler,
		logger:  logger.With(zap.String("component", "viewer")),
	}, nil
}

// Load reads a compact dataset file, builds its spatial index, and swaps
// both in atomically. On error the previous snapshot stays active.
func (s *Session) Load(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	return s.Install(ds)
}

// Install builds an index over an already-loaded dataset and makes it the
// active snapshot.
func (s *Session) Install(ds *dataset.Dataset) error {
	idx, err := spatial.Build(ds, s.cfg.Index.TargetPerCell)
	if err != nil {
		return err
	}
	s.current.Store(&snapshot{ds: ds, idx: idx})
	s.logger.Info("dataset installed", zap.Int("records", ds.Len()))
	return nil
}

// Dataset returns the active dataset, or nil before the first Load.
func (s *Session) Dataset() *dataset.Dataset {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.ds
}

// View answers a viewport request: query the index, apply the LOD budget
// for the viewport span, and materialize the sampled records. The whole
// request is served from one snapshot even if Load runs concurrently.
func (s *Session) View(vp spatial.Viewport) (*View, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, errors.New(errors.ErrorTypeNotFound, "no dataset loaded")
	}
	if !vp.Valid() {
		return nil, errors.Newf(errors.ErrorTypeValidation, "invalid viewport: %+v", vp)
	}

	hits := snap.idx.Query(vp)
	sampled := s.sampler.Sample(hits, vp.Span())

	points := make([]record.Canonical, len(sampled))
	for i, idx := range sampled {
		points[i] = snap.ds.At(idx)
	}

	return &View{
		Points: points,
		Shown:  len(points),
		Total:  len(hits),
	}, nil
}
