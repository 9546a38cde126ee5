// Package revert undoes recorded flatten runs. Actions are replayed in
// strict reverse order of recording: reversed log order already encodes the
// dependency between directory removals and the moves out of them, so
// directories are recreated before the files they held are restored, with no
// separate passes.
package revert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/logging"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// Options configures a revert run.
type Options struct {
	// KeepLogs preserves journals after reversion, stamped as reverted,
	// instead of deleting them.
	KeepLogs bool
}

// Latest reverts the most recent journal in the store.
func Latest(store *journal.Store, opts Options) (*types.Report, error) {
	l, err := store.Latest()
	if err != nil {
		return nil, err
	}
	return Revert(store, l.ID, opts)
}

// Revert undoes the actions of one journal. The journal is verified first;
// a corrupt journal is fatal before any mutation. Per-entry failures are
// recorded in the report and never abort the run.
func Revert(store *journal.Store, id string, opts Options) (*types.Report, error) {
	l, err := store.Load(id)
	if err != nil {
		return nil, err
	}

	if validity := journal.VerifyLog(l); !validity.Valid {
		return nil, fmt.Errorf("%w: %s: %s", types.ErrCorruptLog, id, validity.Problems[0])
	}
	if l.Mode.DryRun {
		return nil, fmt.Errorf("%w: %s is a dry-run journal and is not authoritative", types.ErrCorruptLog, id)
	}

	report := replay(l)

	if opts.KeepLogs {
		if err := store.MarkReverted(id); err != nil {
			return nil, fmt.Errorf("stamping journal: %w", err)
		}
	} else {
		if err := store.Remove(id); err != nil {
			return nil, fmt.Errorf("removing journal: %w", err)
		}
	}

	return report, nil
}

// All reverts every journal in the store, most recent first, fully reverting
// each before starting the next. Dry-run journals are discarded along the
// way; they record no mutations.
func All(store *journal.Store, opts Options) (*types.Report, error) {
	summaries, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, types.ErrLogNotFound
	}

	total := &types.Report{}
	for _, s := range summaries {
		if s.DryRun {
			if !opts.KeepLogs {
				_ = store.Remove(s.ID)
			}
			continue
		}
		r, err := Revert(store, s.ID, opts)
		if err != nil {
			return total, err
		}
		merge(total, r)
	}
	return total, nil
}

// replay undoes a verified journal's actions in reverse order.
func replay(l *journal.Log) *types.Report {
	log := logging.Get("revert")
	report := &types.Report{}

	for i := len(l.Actions) - 1; i >= 0; i-- {
		a := l.Actions[i]
		if a.Outcome != journal.OutcomeSucceeded {
			continue
		}

		switch a.Op {
		case journal.OpMove, journal.OpMoveRenamed, journal.OpOverwrite:
			if !a.Reversible {
				// The content this action placed was destroyed by a
				// later overwrite; nothing can be restored.
				report.NonReversible++
				log.Warn("not reversible, content was overwritten", "source", a.Source)
				continue
			}
			if err := moveBack(a.Destination, a.Source); err != nil {
				report.RecordFailure(a.Destination)
				log.Warn("restore failed", "destination", a.Destination, "error", err)
				continue
			}
			report.Restored++
			report.TotalBytes += a.Size

		case journal.OpDeleteDir:
			if err := os.MkdirAll(a.Source, 0o755); err != nil {
				report.RecordFailure(a.Source)
				log.Warn("cannot recreate directory", "path", a.Source, "error", err)
				continue
			}
			report.Restored++

		case journal.OpDeleteFile:
			// Cleanup only ever deletes zero-byte files, so recreating
			// an empty file is an exact restore.
			if err := recreateEmpty(a.Source); err != nil {
				report.RecordFailure(a.Source)
				log.Warn("cannot recreate file", "path", a.Source, "error", err)
				continue
			}
			report.Restored++

		case journal.OpSkip:
			// Nothing was mutated.
		}
	}

	return report
}

// moveBack returns a moved entry to its recorded source. The source's parent
// directory normally already exists because directory recreations replay
// first, but MkdirAll covers journals whose directories were removed outside
// a recorded run.
func moveBack(dest, source string) error {
	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s no longer exists", dest)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
		return err
	}
	return os.Rename(dest, source)
}

// recreateEmpty creates an empty file at path.
func recreateEmpty(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// merge accumulates one revert's report into the running total.
func merge(total, r *types.Report) {
	total.Restored += r.Restored
	total.NonReversible += r.NonReversible
	total.Failed += r.Failed
	total.FailedPaths = append(total.FailedPaths, r.FailedPaths...)
	total.TotalBytes += r.TotalBytes
}
