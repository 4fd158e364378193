// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the merge stages in order: load, merge, visualize,
// save, then the optional publish and history steps. The first failing stage
// stops the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/pdiddy/cddprep/internal/depict"
	"github.com/pdiddy/cddprep/internal/history"
	"github.com/pdiddy/cddprep/internal/load"
	"github.com/pdiddy/cddprep/internal/merge"
	"github.com/pdiddy/cddprep/internal/publish"
	"github.com/pdiddy/cddprep/internal/save"
	"github.com/pdiddy/cddprep/internal/secrets"
	"github.com/pdiddy/cddprep/internal/table"
	"github.com/pdiddy/cddprep/internal/visualize"
	"github.com/pdiddy/cddprep/pkg/types"
)

// Options configures one run.
type Options struct {
	ScanPath string
	VialPath string
	Config   types.Config
	Secrets  secrets.Set

	// Depicter and Surface override the ones built from Config.Visualize.
	Depicter depict.Depicter
	Surface  visualize.Surface

	// Out receives the console lines; nil discards them.
	Out    io.Writer
	Logger *zap.Logger

	// Now defaults to time.Now and dates the output file.
	Now func() time.Time
}

// Result describes a successful run.
type Result struct {
	OutputPath   string
	OutputSize   int64
	Rows         int
	Images       []string
	PublishedURL string
	RunID        string
}

// Run executes the stages for opts. Once the output file is written, a
// publish or history failure is returned alongside the partial Result and the
// file is left in place.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	cfg := opts.Config
	started := now()

	scan, vial, err := load.Load(opts.ScanPath, opts.VialPath)
	if err != nil {
		return Result{}, err
	}
	log.Info("loaded inputs",
		zap.String("scan", opts.ScanPath), zap.Int("scan_rows", scan.Len()),
		zap.String("vials", opts.VialPath), zap.Int("vial_rows", vial.Len()))

	merged, err := merge.Merge(scan, vial)
	if err != nil {
		return Result{}, err
	}
	log.Info("merged", zap.Int("rows", merged.Len()), zap.Int("dropped_scans", merge.DroppedScans(scan, vial)))

	var res Result
	if cfg.Visualize.Enabled {
		images, err := visualizeStage(ctx, opts, merged, out, log)
		if err != nil {
			return Result{}, err
		}
		res.Images = images
	} else {
		log.Debug("visualization disabled")
	}

	path, err := save.Save(merged, cfg.Output.Dir, now(), out)
	if err != nil {
		return Result{}, err
	}
	res.OutputPath = path
	res.Rows = merged.Len()
	if fi, err := os.Stat(path); err == nil {
		res.OutputSize = fi.Size()
	}
	log.Info("saved output", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(res.OutputSize))))

	if cfg.Publish.Driver != types.PublishNone {
		store, err := publish.Open(ctx, cfg.Publish, opts.Secrets)
		if err != nil {
			return res, err
		}
		info, err := publish.Publish(ctx, store, path, cfg.Publish.Prefix)
		if err != nil {
			return res, err
		}
		res.PublishedURL = info.URL
		fmt.Fprintf(out, "Output file published to: %s\n", info.URL)
		log.Info("published", zap.String("driver", string(store.Driver())), zap.String("url", info.URL),
			zap.String("size", humanize.Bytes(uint64(info.Size))))
	}

	if cfg.History.Enabled {
		id, err := record(ctx, cfg.History, history.Run{
			StartedAt:    started,
			FinishedAt:   now(),
			ScanFile:     opts.ScanPath,
			VialFile:     opts.VialPath,
			OutputPath:   path,
			OutputSize:   res.OutputSize,
			PublishedURL: res.PublishedURL,
		}, merged)
		if err != nil {
			return res, fmt.Errorf("recording run history: %w", err)
		}
		res.RunID = id
		log.Info("recorded run", zap.String("run_id", id))
	}
	return res, nil
}

func visualizeStage(ctx context.Context, opts Options, merged *table.Table, out io.Writer, log *zap.Logger) ([]string, error) {
	d := opts.Depicter
	if d == nil {
		var err error
		if d, err = depict.New(opts.Config.Visualize); err != nil {
			return nil, err
		}
	}
	s := opts.Surface
	var dir *visualize.DirSurface
	if s == nil {
		var err error
		if dir, err = visualize.NewDirSurface(opts.Config.Visualize.ImagesDir); err != nil {
			return nil, err
		}
		s = dir
	}
	if err := visualize.Visualize(ctx, merged, d, s, out, log); err != nil {
		return nil, err
	}
	if dir != nil {
		log.Info("wrote structure images", zap.String("dir", dir.Dir), zap.Int("count", len(dir.Paths)))
		return dir.Paths, nil
	}
	return nil, nil
}

func record(ctx context.Context, cfg types.HistoryConfig, run history.Run, merged *table.Table) (string, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()
	run, err = store.RecordRun(ctx, run, merged)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}
