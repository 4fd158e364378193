// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"
)

// ExportRun is a run with its vials, as written by ExportYAML.
type ExportRun struct {
	Run   `yaml:",inline"`
	Vials []Vial `yaml:"vials"`
}

// ExportYAML writes up to limit runs, newest first, each with its vials.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return err
	}
	entries := make([]ExportRun, 0, len(runs))
	for _, r := range runs {
		vials, err := s.Vials(ctx, r.ID)
		if err != nil {
			return err
		}
		entries = append(entries, ExportRun{Run: r, Vials: vials})
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteTable prints runs as an aligned table with human-readable ages and
// sizes relative to now.
func WriteTable(w io.Writer, runs []Run, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tWHEN\tROWS\tSIZE\tOUTPUT\tPUBLISHED")
	for _, r := range runs {
		published := r.PublishedURL
		if published == "" {
			published = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Rows,
			humanize.Bytes(uint64(r.OutputSize)),
			r.OutputPath,
			published,
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
