package flatten

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dterracino/levelzap/pkg/levelzap/inventory"
	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/resolve"
)

// CleanupOptions configures a cleanup run.
type CleanupOptions struct {
	// DryRun simulates the cleanup without mutating the filesystem.
	DryRun bool

	// RemoveEmpty deletes subdirectories that contain nothing.
	RemoveEmpty bool

	// RemoveZero deletes zero-byte files.
	RemoveZero bool
}

// Cleanup removes zero-byte files and/or empty subdirectories beneath root.
// Both deletions are journaled and exactly revertible: an empty file or
// directory is recreated as-is. Zero-byte files are removed before empty
// directories so a directory holding only empty files is cleaned in one run.
func Cleanup(root string, opts CleanupOptions) (*Result, error) {
	abs, err := inventory.ValidateRoot(root)
	if err != nil {
		return nil, err
	}
	if !opts.RemoveEmpty && !opts.RemoveZero {
		return nil, fmt.Errorf("cleanup requires --remove-empty or --remove-zero")
	}

	store, err := journal.NewStore(abs)
	if err != nil {
		return nil, err
	}

	eng := newEngine(abs, store, Options{DryRun: opts.DryRun}, resolve.Policy{}, opts.DryRun)

	if opts.RemoveZero {
		if err := eng.removeZeroFiles(); err != nil {
			return nil, err
		}
	}
	if opts.RemoveEmpty {
		subdirs, err := inventory.Subdirs(abs)
		if err != nil {
			return nil, err
		}
		for _, dir := range subdirs {
			eng.sweepDir(dir)
		}
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

// removeZeroFiles deletes every zero-byte file beneath the root, at any
// depth, journal directory excluded.
func (e *engine) removeZeroFiles() error {
	var targets []string
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.report.RecordFailure(path)
			return nil
		}
		if d.IsDir() {
			if d.Name() == journal.DirName {
				return filepath.SkipDir
			}
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.Size() == 0 {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %q: %w", e.root, err)
	}

	sort.Strings(targets)
	for _, path := range targets {
		e.deleteFile(path)
	}
	return nil
}

// deleteFile removes a zero-byte file, journaling the action.
func (e *engine) deleteFile(path string) {
	action := journal.Action{
		Op:         journal.OpDeleteFile,
		Source:     path,
		Reversible: true,
	}

	if e.dry {
		action.Outcome = journal.OutcomeSimulated
	} else if err := os.Remove(path); err != nil {
		action.Outcome = journal.OutcomeFailed
		action.Error = err.Error()
		action.Reversible = false
		e.writer.Append(action)
		e.report.RecordFailure(path)
		e.log.Warn("cannot remove file", "path", path, "error", err)
		return
	} else {
		action.Outcome = journal.OutcomeSucceeded
	}

	e.writer.Append(action)
	e.removed[path] = true
	e.report.RemovedFiles++
}
