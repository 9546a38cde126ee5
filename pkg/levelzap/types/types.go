// Package types provides core data types for the levelzap directory flattener.
// It includes the filesystem entry model, the run report shared by the flatten
// and revert engines, the error taxonomy, and utility functions for parsing
// and formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Kind identifies the type of a filesystem entry.
type Kind string

const (
	// KindFile is a regular file.
	KindFile Kind = "file"
	// KindDir is a directory.
	KindDir Kind = "directory"
)

// Entry describes a filesystem object beneath a scan root.
// Entries are ephemeral: they are recomputed on every run and never persisted.
type Entry struct {
	// Path is the absolute path to the entry.
	Path string `json:"path"`

	// Kind is the entry type (file or directory).
	Kind Kind `json:"kind"`

	// Size is the file size in bytes. Zero for directories.
	Size int64 `json:"size"`
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Kind == KindDir
}

// HumanSize returns the entry size formatted as a human-readable string.
func (e *Entry) HumanSize() string {
	return FormatSize(e.Size)
}

// Report summarizes a flatten, revert, or cleanup run.
// Per-entry I/O failures are counted here rather than aborting the run.
type Report struct {
	// Moved is the number of entries moved into the target root.
	Moved int `json:"moved"`

	// Renamed is the number of entries moved under a collision-avoiding name.
	Renamed int `json:"renamed"`

	// Overwritten is the number of destinations destructively replaced.
	Overwritten int `json:"overwritten"`

	// Skipped is the number of entries left in place due to collisions.
	Skipped int `json:"skipped"`

	// RemovedDirs is the number of emptied directories deleted.
	RemovedDirs int `json:"removed_dirs"`

	// RemovedFiles is the number of files deleted (cleanup mode only).
	RemovedFiles int `json:"removed_files"`

	// Restored is the number of actions successfully undone (revert only).
	Restored int `json:"restored"`

	// NonReversible is the number of actions whose original content cannot
	// be restored because a destructive overwrite discarded it.
	NonReversible int `json:"non_reversible"`

	// Failed is the number of entries that hit an I/O failure.
	Failed int `json:"failed"`

	// FailedPaths lists the paths that hit an I/O failure.
	FailedPaths []string `json:"failed_paths,omitempty"`

	// TotalBytes is the sum of all moved file sizes in bytes.
	TotalBytes int64 `json:"total_bytes"`
}

// RecordFailure counts a per-entry I/O failure against the report.
func (r *Report) RecordFailure(path string) {
	r.Failed++
	r.FailedPaths = append(r.FailedPaths, path)
}

// HumanBytes returns TotalBytes formatted as a human-readable string.
func (r *Report) HumanBytes() string {
	return FormatSize(r.TotalBytes)
}

// Analysis summarizes a read-only inspection of a directory tree.
type Analysis struct {
	// Root is the analyzed directory.
	Root string `json:"root"`

	// Files is the number of files found.
	Files int64 `json:"files"`

	// Dirs is the number of directories found.
	Dirs int64 `json:"dirs"`

	// TotalBytes is the sum of all file sizes in bytes.
	TotalBytes int64 `json:"total_bytes"`

	// MinSize is the minimum file size threshold applied to the scan.
	// Files below it are excluded from Files and TotalBytes.
	MinSize int64 `json:"min_size,omitempty"`
}

// Error taxonomy for the flattener. Structural errors are fatal for the whole
// invocation; callers match them with errors.Is.
var (
	// ErrNotFound indicates the target root does not exist.
	ErrNotFound = errors.New("path not found")

	// ErrNotADirectory indicates the target root is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrLogNotFound indicates a revert was requested with no journal present.
	ErrLogNotFound = errors.New("no journal found")

	// ErrCorruptLog indicates a journal failed structural verification.
	ErrCorruptLog = errors.New("corrupt journal")

	// ErrCollision indicates a strict-mode collision with no policy to resolve it.
	ErrCollision = errors.New("name collision")
)

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports plain bytes ("1024"), byte suffixes ("512B"), and the K/M/G/T
// families with optional B or iB suffixes. Decimal values are truncated to the
// nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
