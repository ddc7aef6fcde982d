package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/internal/job"
	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/dataset"
	"github.com/edatlas/galaxymap/pkg/json"
	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/spatial"
	"github.com/edatlas/galaxymap/pkg/viewer"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile string
	var logLevel string

	root := &cobra.Command{
		Use:   "galaxymap",
		Short: "Galaxymap - star catalog extraction and viewport sampling",
		Long: `Galaxymap reduces multi-gigabyte star catalog dumps to a compact dataset of
populated systems and serves viewport queries over it with level-of-detail
sampling, so the full galaxy and a single sector are equally renderable.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    logLevel,
				Encoding: "console",
			})
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Galaxymap v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newExtractCmd(&configFile))
	root.AddCommand(newStatsCmd(&configFile))
	root.AddCommand(newSampleCmd(&configFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges an optional YAML file over the defaults.
func loadConfig(configFile string) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func newExtractCmd(configFile *string) *cobra.Command {
	var progressEvery int
	var bufferSize int

	cmd := &cobra.Command{
		Use:   "extract <input.json> <output.json>",
		Short: "Extract populated systems from a raw catalog dump",
		Long: `Extract streams a raw catalog dump (a JSON array of system objects), keeps
every record carrying id64, name, coords and population, and writes them to a
compact pretty-printed dataset file. Memory use is constant regardless of
input size. The output file must not already exist.

Example:
  galaxymap extract systemsPopulated.json galaxy_reduced.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if progressEvery > 0 {
				cfg.Extract.ProgressEvery = progressEvery
			}
			if bufferSize > 0 {
				cfg.Extract.BufferSize = bufferSize
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			j := job.Start(ctx, cfg.Extract, cfg.Observability.ProgressLogInterval, args[0], args[1])
			stats, err := j.Wait()
			if err != nil {
				return err
			}

			fmt.Printf("Extracted %d systems (%d rejected) from %d bytes in %s\n",
				stats.Accepted, stats.Rejected, stats.BytesRead, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&progressEvery, "progress-every", 0, "Report progress after this many items (default from config)")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", 0, "Read/write buffer size in bytes (default from config)")
	return cmd
}

func newStatsCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <dataset.json>",
		Short: "Show record count and bounding box of a compact dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}

			ds, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			idx, err := spatial.Build(ds, cfg.Index.TargetPerCell)
			if err != nil {
				return err
			}

			bounds := ds.Bounds()
			cols, rows := idx.CellCount()
			fmt.Printf("Systems: %d\n", ds.Len())
			fmt.Printf("X: [%.2f, %.2f]\n", bounds.Min.X, bounds.Max.X)
			fmt.Printf("Y: [%.2f, %.2f]\n", bounds.Min.Y, bounds.Max.Y)
			fmt.Printf("Z: [%.2f, %.2f]\n", bounds.Min.Z, bounds.Max.Z)
			fmt.Printf("Grid: %dx%d cells (target %d systems/cell)\n", cols, rows, cfg.Index.TargetPerCell)
			return nil
		},
	}
}

func newSampleCmd(configFile *string) *cobra.Command {
	var minX, maxX, minY, maxY float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample <dataset.json>",
		Short: "Query a viewport and print the LOD-sampled systems as JSON",
		Long: `Sample loads a compact dataset, queries the given viewport, applies the
level-of-detail budget for the viewport span, and prints the sampled systems
as a JSON array on stdout. The count summary goes to stderr so stdout stays
pipeable.

Example:
  galaxymap sample galaxy_reduced.json --min-x -500 --max-x 500 --min-y -500 --max-y 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}

			var session *viewer.Session
			if seed != 0 {
				session, err = viewer.NewSessionWithSeed(cfg, seed)
			} else {
				session, err = viewer.NewSession(cfg)
			}
			if err != nil {
				return err
			}
			if err := session.Load(args[0]); err != nil {
				return err
			}

			view, err := session.View(spatial.Viewport{
				MinX: minX, MaxX: maxX,
				MinY: minY, MaxY: maxY,
			})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(view.Points, "", "    ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			fmt.Fprintln(os.Stderr, view.Summary())

			logger.Debug("sample served",
				zap.Int("shown", view.Shown),
				zap.Int("total", view.Total))
			return nil
		},
	}

	cmd.Flags().Float64Var(&minX, "min-x", -45000, "Viewport minimum X in light years")
	cmd.Flags().Float64Var(&maxX, "max-x", 45000, "Viewport maximum X in light years")
	cmd.Flags().Float64Var(&minY, "min-y", -20000, "Viewport minimum Y in light years")
	cmd.Flags().Float64Var(&maxY, "max-y", 70000, "Viewport maximum Y in light years")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Fixed sampler seed for reproducible output (0 = random)")
	return cmd
}
