package assets

import (
	"context"
	"log/slog"

	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/storage"
)

// Missing is a catalog entry whose asset file is absent.
type Missing struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Src   string `json:"src"`
}

// Report is the outcome of comparing the catalog with the asset directory.
type Report struct {
	Checked int       `json:"checked"`
	Missing []Missing `json:"missing"`
}

// OK reports whether every referenced asset exists.
func (r Report) OK() bool { return len(r.Missing) == 0 }

// Check looks up every visualization's asset in store. Matching is exact:
// case and punctuation must agree with the file name on disk.
func Check(visualizations []models.Visualization, store storage.Provider) Report {
	rep := Report{Missing: []Missing{}}
	for _, v := range visualizations {
		rep.Checked++
		if _, err := store.Resolve(StorePath(v.Asset.Src())); err != nil {
			rep.Missing = append(rep.Missing, Missing{ID: v.ID, Title: v.Title, Src: v.Asset.Src()})
		}
	}
	return rep
}

// LogReport writes one warning per missing asset. A broken reference only
// breaks that modal, so it is never fatal.
func LogReport(ctx context.Context, logger *slog.Logger, rep Report) {
	for _, m := range rep.Missing {
		logger.WarnContext(ctx, "assets: missing file",
			slog.Int("id", m.ID),
			slog.String("src", m.Src))
	}
	logger.DebugContext(ctx, "assets: checked",
		slog.Int("checked", rep.Checked),
		slog.Int("missing", len(rep.Missing)))
}
