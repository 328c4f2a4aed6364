// Package exports implements the export command and the output handling
// shared by commands that write files.
package exports

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/export"
	"github.com/julianstephens/carelog/internal/logger"
)

const defaultWorkbookName = "carelog-summary.xlsx"

type ExportCmd struct {
	Format string `short:"f" help:"Output format." enum:"xlsx,ics" default:"xlsx"`
	Output string `short:"o" help:"Output file. Defaults to carelog-summary.xlsx for xlsx and stdout for ics." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	switch c.Format {
	case "ics":
		meds, err := ctx.Book.Medicines.List(bg)
		if err != nil {
			return err
		}
		return WriteTo(ctx, c.Output, func(w io.Writer) error {
			return export.WriteICS(w, meds, ctx.Now(), ctx.Location)
		})
	case "xlsx", "":
		if _, err := ctx.Answers(bg); err != nil {
			return err
		}
		snap, err := ctx.Book.Snapshot(bg)
		if err != nil {
			return err
		}
		out := c.Output
		if out == "" {
			out = defaultWorkbookName
		}
		return WriteTo(ctx, out, func(w io.Writer) error {
			return export.WriteWorkbook(w, ctx.Catalog, snap)
		})
	default:
		return fmt.Errorf("unsupported export format %q", c.Format)
	}
}

// WriteTo runs write against path, or against the command output when
// path is empty. Files are written to a temporary name and renamed into
// place once complete.
func WriteTo(ctx *cli.Context, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(ctx.Out)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	cleanup := func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("Failed to remove temporary file", "path", tmp.Name(), "error", rmErr)
		}
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ctx.Printf("✓ Exported to %s\n", path)
	return nil
}
