package iostats

import (
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/clindict/omopstat/pkg/stats"
)

// NewBarProgress returns a progress callback that drives a terminal
// progress bar per table. Failed concepts are logged without
// disturbing the bar's cleanup-on-finish behavior.
func NewBarProgress() stats.ProgressFunc {
	var bar *pb.ProgressBar

	return func(p stats.Progress) {
		switch p.Kind {
		case stats.TableStart:
			bar = pb.Full.Start(p.Total)
			bar.Set("prefix", p.Table+" ")
			bar.Set(pb.CleanOnFinish, true)
		case stats.BatchDone:
			if bar != nil {
				bar.SetCurrent(int64(p.Done))
			}
		case stats.ConceptFailed:
			slog.Warn("Concept computation failed",
				"table", p.Table,
				"concept_id", p.ConceptID,
				"error", p.Err,
			)
		case stats.TableDone:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
		}
	}
}
