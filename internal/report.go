package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mimahin/gmgbd/internal/siteservice"
)

// ErrAssetsMissing is returned by CheckAssets when a gallery entry has no file.
var ErrAssetsMissing = errors.New("assets missing")

func (a *application) output() io.Writer {
	if a.out != nil {
		return a.out
	}
	return os.Stdout
}

// Dictionary prints the data dictionary filtered by query as a table.
func Dictionary(ctx context.Context, query string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := buildComponents(app.config, newLogger(app.config, os.Stderr))
	if err != nil {
		return err
	}

	res := c.svc.Dictionary(ctx, query)

	t := table.NewWriter()
	t.SetOutputMirror(app.output())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Badge", "Description"})
	for _, f := range res.Features {
		t.AppendRow(table.Row{f.Column, f.Type, f.Badge, f.Description})
	}
	t.SetCaption("%d of %d columns match", res.Total, len(c.catalog.DataFeatures()))
	t.Render()
	return nil
}

// CheckAssets prints every gallery entry whose file is missing from the
// asset directory and fails when there is at least one.
func CheckAssets(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)
	c, err := buildComponents(app.config, logger)
	if err != nil {
		return err
	}

	rep, err := c.svc.CheckAssets(ctx)
	if errors.Is(err, siteservice.ErrNoAssetDir) {
		return fmt.Errorf("asset directory %q is not available", app.config.Assets.Dir)
	}
	if err != nil {
		return err
	}

	out := app.output()
	if rep.OK() {
		_, _ = fmt.Fprintf(out, "all %d assets present in %s\n", rep.Checked, app.config.Assets.Dir)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Source"})
	for _, m := range rep.Missing {
		t.AppendRow(table.Row{m.ID, m.Title, m.Src})
	}
	t.Render()

	logger.Debug("asset check finished",
		slog.Int("checked", rep.Checked),
		slog.Int("missing", len(rep.Missing)))
	return fmt.Errorf("%w: %d of %d", ErrAssetsMissing, len(rep.Missing), rep.Checked)
}
