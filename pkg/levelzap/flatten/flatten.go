// Package flatten implements the directory-flattening engine. It moves the
// contents of a root's subdirectories up into the root, consults the conflict
// resolver on every collision, removes the emptied directories bottom-up, and
// records each mutation in a journal precise enough for exact reversal.
package flatten

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dterracino/levelzap/pkg/levelzap/inventory"
	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/logging"
	"github.com/dterracino/levelzap/pkg/levelzap/resolve"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// Options configures a flatten run.
type Options struct {
	// DryRun simulates all decisions without mutating the filesystem. The
	// resulting journal is tagged as non-authoritative and cannot be
	// reverted.
	DryRun bool

	// Merge unions colliding directories instead of treating them as
	// conflicts.
	Merge bool

	// Overwrite destructively replaces colliding destinations. Takes
	// precedence over merge for collisions involving files.
	Overwrite bool

	// Strict turns unresolvable collisions into a fatal error, surfaced
	// before any filesystem mutation begins.
	Strict bool

	// Recurse pulls up files from every depth beneath the top-level
	// subdirectories instead of only their direct children.
	Recurse bool
}

// Result pairs the run report with the journal it produced.
type Result struct {
	Report *types.Report
	Log    *journal.Log

	// JournalID is the persisted journal's ID. Empty for dry runs.
	JournalID string
}

// Flatten moves every candidate entry out of root's subdirectories into root
// and deletes the emptied directories. Structural errors (missing root,
// illegal policy, strict-mode collisions) are returned before any mutation;
// per-entry I/O failures are recorded in the report and never abort the run.
func Flatten(root string, opts Options) (*Result, error) {
	abs, err := inventory.ValidateRoot(root)
	if err != nil {
		return nil, err
	}

	policy, err := resolve.NewPolicy(opts.Merge, opts.Overwrite, opts.Strict)
	if err != nil {
		return nil, err
	}

	store, err := journal.NewStore(abs)
	if err != nil {
		return nil, err
	}

	// Strict mode surfaces collisions before any mutation: a simulated
	// pass shares the real pass's decision logic exactly, so any Fail it
	// finds is a Fail the real pass would hit.
	if opts.Strict && !opts.DryRun {
		pre := newEngine(abs, store, opts, policy, true)
		if err := pre.run(); err != nil {
			return nil, err
		}
		if len(pre.collisions) > 0 {
			return nil, fmt.Errorf("%w: %s", types.ErrCollision, pre.collisions[0])
		}
	}

	eng := newEngine(abs, store, opts, policy, opts.DryRun)
	if err := eng.run(); err != nil {
		return nil, err
	}
	if opts.Strict && len(eng.collisions) > 0 {
		return nil, eng.failCollision()
	}

	res := &Result{Report: eng.report}
	if !opts.DryRun {
		id, err := eng.writer.Finalize()
		if err != nil {
			return nil, fmt.Errorf("persisting journal: %w", err)
		}
		res.JournalID = id
	}
	l := eng.writer.Log()
	res.Log = &l
	return res, nil
}

// engine holds the state of one flatten pass. A dry pass maintains a
// simulated view of the filesystem (occupied and removed) so its decisions
// and report match the real pass byte for byte.
type engine struct {
	root   string
	opts   Options
	policy resolve.Policy
	dry    bool

	writer *journal.Writer
	report *types.Report
	log    *logging.Logger

	// occupied maps destinations written this run to the kind placed there.
	occupied map[string]types.Kind

	// removed marks sources moved away or directories deleted this run.
	removed map[string]bool

	// lastWrite maps a destination to the index of the most recent action
	// that wrote it this run. An overwrite of the same destination marks
	// that action non-reversible: its content is gone.
	lastWrite map[string]int

	// collisions collects strict-mode failures during simulated passes.
	collisions []string
}

func newEngine(root string, store *journal.Store, opts Options, policy resolve.Policy, dry bool) *engine {
	mode := journal.Mode{
		DryRun:    dry,
		Merge:     opts.Merge,
		Overwrite: opts.Overwrite,
		Strict:    opts.Strict,
		Recurse:   opts.Recurse,
	}
	return &engine{
		root:      root,
		opts:      opts,
		policy:    policy,
		dry:       dry,
		writer:    store.NewWriter(root, mode),
		report:    &types.Report{},
		log:       logging.Get("flatten"),
		occupied:  make(map[string]types.Kind),
		removed:   make(map[string]bool),
		lastWrite: make(map[string]int),
	}
}

// run executes the pass: enumerate top-level subdirectories, process their
// entries in lexicographic order, then sweep each emptied tree bottom-up.
func (e *engine) run() error {
	subdirs, err := inventory.Subdirs(e.root)
	if err != nil {
		return err
	}

	for _, dir := range subdirs {
		entries, err := inventory.Scan(dir, e.opts.Recurse)
		if err != nil {
			e.report.RecordFailure(dir)
			e.log.Warn("cannot enumerate directory", "path", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			e.processEntry(entry)
		}
		e.sweepDir(dir)
	}

	return nil
}

// processEntry resolves and applies the decision for one top-level candidate.
func (e *engine) processEntry(entry types.Entry) {
	dest := filepath.Join(e.root, filepath.Base(entry.Path))

	switch resolve.Resolve(e.stat(dest), entry.Kind, e.policy) {
	case resolve.Move:
		e.move(entry, dest, journal.OpMove, "")
	case resolve.MergeInto:
		e.mergeDir(entry.Path, dest)
	case resolve.Overwrite:
		e.overwrite(entry, dest)
	case resolve.Skip:
		e.skip(entry, dest)
	case resolve.Fail:
		e.collisions = append(e.collisions, fmt.Sprintf("%s -> %s", entry.Path, dest))
	}
}

// failCollision turns the first recorded strict collision into an error.
// A collision can appear between the preflight pass and the real pass when
// the tree changes underneath us; by then mutations may already be journaled,
// so the partial journal is persisted first to keep them revertible.
func (e *engine) failCollision() error {
	if !e.dry && e.writer.Len() > 0 {
		if _, err := e.writer.Finalize(); err != nil {
			e.log.Warn("cannot persist partial journal", "error", err)
		}
	}
	return fmt.Errorf("%w: %s", types.ErrCollision, e.collisions[0])
}

// mergeDir recursively unions srcDir into the existing destDir. Every inner
// move is its own reversible action; the emptied source directory is deleted
// afterwards.
func (e *engine) mergeDir(srcDir, destDir string) {
	entries, err := inventory.Scan(srcDir, false)
	if err != nil {
		e.report.RecordFailure(srcDir)
		e.log.Warn("cannot enumerate merge source", "path", srcDir, "error", err)
		return
	}

	for _, entry := range entries {
		dest := filepath.Join(destDir, filepath.Base(entry.Path))

		switch resolve.ResolveInner(e.stat(dest), entry.Kind, e.policy) {
		case resolve.Move:
			e.move(entry, dest, journal.OpMove, "")
		case resolve.MergeInto:
			e.mergeDir(entry.Path, dest)
		case resolve.Overwrite:
			e.overwrite(entry, dest)
		case resolve.Rename:
			renamed := resolve.NextAvailable(dest, e.taken)
			e.move(entry, renamed, journal.OpMoveRenamed, dest)
		case resolve.Fail:
			e.collisions = append(e.collisions, fmt.Sprintf("%s -> %s", entry.Path, dest))
		}
	}

	e.sweepDir(srcDir)
}

// move relocates an entry, journaling the action. conflict is the original
// colliding destination for renamed moves.
func (e *engine) move(entry types.Entry, dest string, op journal.Op, conflict string) {
	action := journal.Action{
		Op:          op,
		Source:      entry.Path,
		Destination: dest,
		Reversible:  true,
		Conflict:    conflict,
		Size:        entry.Size,
	}

	if e.dry {
		action.Outcome = journal.OutcomeSimulated
	} else if err := os.Rename(entry.Path, dest); err != nil {
		action.Outcome = journal.OutcomeFailed
		action.Error = err.Error()
		action.Reversible = false
		e.writer.Append(action)
		e.report.RecordFailure(entry.Path)
		e.log.Warn("move failed", "source", entry.Path, "error", err)
		return
	} else {
		action.Outcome = journal.OutcomeSucceeded
	}

	idx := e.writer.Append(action)
	e.markWritten(dest, entry.Kind, idx)
	e.removed[entry.Path] = true
	e.log.Debug("moved", "source", entry.Path, "destination", dest, "size", entry.HumanSize())

	if op == journal.OpMoveRenamed {
		e.report.Renamed++
	} else {
		e.report.Moved++
	}
	e.report.TotalBytes += entry.Size
}

// overwrite destructively replaces dest with the entry. The overwrite action
// itself reverts by moving the destination back to its source; what cannot be
// restored is whatever occupied the destination before. The previous writer
// of the destination this run, if any, is flagged non-reversible, and a
// pre-existing occupant counts against the report the same way.
func (e *engine) overwrite(entry types.Entry, dest string) {
	action := journal.Action{
		Op:          journal.OpOverwrite,
		Source:      entry.Path,
		Destination: dest,
		Reversible:  true,
		Size:        entry.Size,
	}

	if e.dry {
		action.Outcome = journal.OutcomeSimulated
	} else if err := replace(entry.Path, dest); err != nil {
		action.Outcome = journal.OutcomeFailed
		action.Error = err.Error()
		action.Reversible = false
		e.writer.Append(action)
		e.report.RecordFailure(entry.Path)
		e.log.Warn("overwrite failed", "source", entry.Path, "error", err)
		return
	} else {
		action.Outcome = journal.OutcomeSucceeded
	}

	if prev, ok := e.lastWrite[dest]; ok {
		e.writer.MarkNonReversible(prev)
	}
	e.report.NonReversible++

	idx := e.writer.Append(action)
	e.markWritten(dest, entry.Kind, idx)
	e.removed[entry.Path] = true

	e.report.Overwritten++
	e.report.TotalBytes += entry.Size
}

// replace removes dest and moves src into its place.
func replace(src, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

// skip records a collision left unresolved.
func (e *engine) skip(entry types.Entry, dest string) {
	outcome := journal.OutcomeSucceeded
	if e.dry {
		outcome = journal.OutcomeSimulated
	}
	e.writer.Append(journal.Action{
		Op:          journal.OpSkip,
		Source:      entry.Path,
		Destination: dest,
		Outcome:     outcome,
		Reversible:  true,
	})
	e.report.Skipped++
	e.log.Warn("collision, skipping", "source", entry.Path, "destination", dest)
}

// sweepDir deletes dir if it is empty after the run's moves, recursing into
// surviving subdirectories first so trees are removed bottom-up. A deletion
// failure is recorded and does not abort the remaining sweeps. Returns true
// when dir was (or would be) removed.
func (e *engine) sweepDir(dir string) bool {
	children, err := os.ReadDir(dir)
	if err != nil {
		e.report.RecordFailure(dir)
		e.log.Warn("cannot sweep directory", "path", dir, "error", err)
		return false
	}

	empty := true
	for _, c := range children {
		path := filepath.Join(dir, c.Name())
		if e.removed[path] {
			continue
		}
		if c.IsDir() {
			if !e.sweepDir(path) {
				empty = false
			}
			continue
		}
		empty = false
	}
	if !empty {
		return false
	}

	action := journal.Action{
		Op:         journal.OpDeleteDir,
		Source:     dir,
		Reversible: true,
	}

	if e.dry {
		action.Outcome = journal.OutcomeSimulated
	} else if err := os.Remove(dir); err != nil {
		action.Outcome = journal.OutcomeFailed
		action.Error = err.Error()
		action.Reversible = false
		e.writer.Append(action)
		e.report.RecordFailure(dir)
		e.log.Warn("cannot remove directory", "path", dir, "error", err)
		return false
	} else {
		action.Outcome = journal.OutcomeSucceeded
	}

	e.writer.Append(action)
	e.removed[dir] = true
	e.report.RemovedDirs++
	return true
}

// stat reports the destination state as this pass sees it: mutations applied
// (or simulated) earlier in the run shadow the on-disk state, which keeps dry
// runs and real runs deciding identically.
func (e *engine) stat(path string) resolve.Target {
	if kind, ok := e.occupied[path]; ok {
		return resolve.Target{Exists: true, IsDir: kind == types.KindDir}
	}
	if e.removed[path] {
		return resolve.Target{}
	}
	info, err := os.Lstat(path)
	if err != nil {
		return resolve.Target{}
	}
	return resolve.Target{Exists: true, IsDir: info.IsDir()}
}

// taken reports path occupancy for rename probing.
func (e *engine) taken(path string) bool {
	return e.stat(path).Exists
}

// markWritten records a destination write in the run's view.
func (e *engine) markWritten(dest string, kind types.Kind, actionIdx int) {
	e.occupied[dest] = kind
	delete(e.removed, dest)
	e.lastWrite[dest] = actionIdx
}
