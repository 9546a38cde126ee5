// Package inventory enumerates the movable entries beneath a flatten root.
// It produces entries in deterministic lexicographic order so that runs are
// reproducible and their journals diffable. A read-only Analyze pass built on
// fastwalk provides the size/count inspection mode.
package inventory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// ValidateRoot resolves root to an absolute path and verifies it is an
// existing directory. Returns types.ErrNotFound or types.ErrNotADirectory.
func ValidateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", types.ErrNotFound, abs)
		}
		return "", fmt.Errorf("cannot access %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", types.ErrNotADirectory, abs)
	}

	return abs, nil
}

// Subdirs returns the top-level subdirectories of root in lexicographic
// order. The journal storage directory is never included.
func Subdirs(root string) ([]string, error) {
	abs, err := ValidateRoot(root)
	if err != nil {
		return nil, err
	}

	children, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", abs, err)
	}

	var dirs []string
	for _, c := range children {
		if !c.IsDir() || c.Name() == journal.DirName {
			continue
		}
		dirs = append(dirs, filepath.Join(abs, c.Name()))
	}
	// ReadDir already sorts by name; keep the explicit sort as the ordering
	// contract rather than an implementation detail of os.ReadDir.
	sort.Strings(dirs)
	return dirs, nil
}

// Scan enumerates the movable entries beneath dir, one of the top-level
// subdirectories of a flatten root. Non-recursive mode yields the direct
// children of dir, files and directories alike. Recursive mode yields every
// file at any depth beneath dir; intermediate directories are not movable
// entries in that mode, they are emptied and removed by the flatten engine.
func Scan(dir string, recursive bool) ([]types.Entry, error) {
	if recursive {
		return scanRecursive(dir)
	}
	return scanDirect(dir)
}

// scanDirect lists the immediate children of dir.
func scanDirect(dir string) ([]types.Entry, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", dir, err)
	}

	entries := make([]types.Entry, 0, len(children))
	for _, c := range children {
		if c.Name() == journal.DirName {
			// Journals from an earlier flatten of this subtree stay put.
			continue
		}
		e := types.Entry{Path: filepath.Join(dir, c.Name())}
		if c.IsDir() {
			e.Kind = types.KindDir
		} else {
			e.Kind = types.KindFile
			if info, err := c.Info(); err == nil {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// scanRecursive walks the full tree beneath dir and yields every file.
func scanRecursive(dir string) ([]types.Entry, error) {
	var entries []types.Entry

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == journal.DirName {
				return filepath.SkipDir
			}
			return nil
		}
		e := types.Entry{Path: path, Kind: types.KindFile}
		if info, err := d.Info(); err == nil {
			e.Size = info.Size()
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Analyze walks the tree beneath root and returns file/directory counts and
// total bytes. It is read-only and mutates nothing; the journal directory is
// excluded from the totals. Files smaller than minSize bytes are not counted;
// pass 0 to count everything.
func Analyze(root string, recursive bool, minSize int64) (*types.Analysis, error) {
	abs, err := ValidateRoot(root)
	if err != nil {
		return nil, err
	}

	var files, dirs, bytes atomic.Int64

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are not fatal for analysis
		}
		if d.IsDir() {
			if d.Name() == journal.DirName {
				return filepath.SkipDir
			}
			if path == abs {
				return nil
			}
			if !recursive {
				// One level of subfolders plus their direct children.
				if rel, relErr := filepath.Rel(abs, path); relErr == nil {
					if filepath.Dir(rel) != "." {
						return filepath.SkipDir
					}
				}
			}
			dirs.Add(1)
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			if minSize == 0 {
				files.Add(1)
			}
			return nil
		}
		if info.Size() < minSize {
			return nil
		}
		files.Add(1)
		bytes.Add(info.Size())
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("analyzing %q: %w", abs, walkErr)
	}

	return &types.Analysis{
		Root:       abs,
		Files:      files.Load(),
		Dirs:       dirs.Load(),
		TotalBytes: bytes.Load(),
		MinSize:    minSize,
	}, nil
}
