package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/conceptmap/pkg/debug"
)

// Target is one output file.
type Target struct {
	Path   string
	Format Format
}

// Write renders the scene in the given format.
func Write(out io.Writer, s Scene, f Format) error {
	switch f {
	case FormatSVG:
		return WriteSVG(out, s)
	case FormatPNG:
		return WritePNG(out, s)
	case FormatJSON:
		return WriteJSON(out, s)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// RenderFile renders the scene to a single file, creating parent
// directories as needed.
func RenderFile(s Scene, t Target) (err error) {
	if dir := filepath.Dir(t.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(t.Path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", t.Path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", t.Path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, s, t.Format); err != nil {
		return fmt.Errorf("rendering %s: %w", t.Path, err)
	}
	return bw.Flush()
}

// RenderAll renders every target concurrently. The scene is read-only, so
// renderers share it. The first error cancels the remaining targets that
// have not started yet.
func RenderAll(ctx context.Context, s Scene, targets []Target) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			debug.Log("export: rendering %s as %s", t.Path, t.Format)
			return RenderFile(s, t)
		})
	}
	return g.Wait()
}
