// Package galaxymap turns multi-gigabyte star catalog dumps into an
// interactive galaxy map that stays responsive at every zoom level.
//
// The system has two halves:
//
// 1. Extraction (pkg/extract): a bounded-memory streaming pass over a raw
// catalog dump (a JSON array of system objects). Records carrying the four
// required fields (id64, name, coords, population) are kept, everything else
// is dropped, and the survivors are written to a compact dataset file in
// input order. Memory use is constant regardless of input size.
//
// 2. Viewing (pkg/dataset, pkg/spatial, pkg/lod, pkg/viewer): the compact
// dataset is loaded into memory, indexed with a uniform spatial grid, and
// served through a Session. Each viewport request is answered from an
// immutable dataset+index snapshot; a level-of-detail budget keyed off the
// viewport span caps how many points are drawn, sampled uniformly without
// replacement, so panning across the whole galaxy and inspecting a single
// sector cost roughly the same.
//
// # Quick Start
//
// Reduce a raw dump and query it:
//
//	galaxymap extract systemsPopulated.json galaxy_reduced.json
//	galaxymap stats galaxy_reduced.json
//	galaxymap sample galaxy_reduced.json --min-x -500 --max-x 500 --min-y -500 --max-y 500
//
// Or embed the viewer core:
//
//	cfg := config.NewDefaultConfig()
//	session, err := viewer.NewSession(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := session.Load("galaxy_reduced.json"); err != nil {
//	    return err
//	}
//	view, err := session.View(spatial.Viewport{MinX: -500, MaxX: 500, MinY: -500, MaxY: 500})
package galaxymap
