// Package resolve decides the outcome of destination collisions during a
// flatten. The decision function is pure: it inspects only its arguments and
// performs no filesystem access, so policies are independently testable and
// the dry-run path shares the exact decision logic of a real run.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// Decision is the resolved outcome for a single destination.
type Decision int

const (
	// Move places the entry at the unoccupied destination.
	Move Decision = iota
	// MergeInto recursively unions a source directory into the existing
	// destination directory.
	MergeInto
	// Overwrite destructively replaces the existing destination.
	Overwrite
	// Rename moves the entry under a collision-avoiding name. Used for
	// inner merge conflicts when overwrite is off.
	Rename
	// Skip leaves the entry in place and records the collision.
	Skip
	// Fail aborts the run; strict mode with no policy to resolve the
	// collision.
	Fail
)

// String returns the decision name for logs and reports.
func (d Decision) String() string {
	switch d {
	case Move:
		return "move"
	case MergeInto:
		return "merge"
	case Overwrite:
		return "overwrite"
	case Rename:
		return "rename"
	case Skip:
		return "skip"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Policy is the validated collision policy for a run. Construct it once at
// the boundary with NewPolicy; illegal flag combinations never reach the
// flatten engine.
type Policy struct {
	Merge     bool
	Overwrite bool
	Strict    bool
}

// ErrPolicyConflict indicates an illegal combination of policy flags.
var ErrPolicyConflict = errors.New("conflicting policy flags")

// NewPolicy validates the flag combination and returns the policy.
// Merge, overwrite, and strict together are rejected: strict demands that
// collisions be errors while the other two demand they be resolved.
func NewPolicy(merge, overwrite, strict bool) (Policy, error) {
	if merge && overwrite && strict {
		return Policy{}, fmt.Errorf("%w: merge, overwrite, and strict cannot be combined", ErrPolicyConflict)
	}
	return Policy{Merge: merge, Overwrite: overwrite, Strict: strict}, nil
}

// Target describes the state of a destination path as seen by the engine.
// During dry runs the engine synthesizes this from its simulated view of the
// filesystem, which is why the resolver takes state instead of a path.
type Target struct {
	Exists bool
	IsDir  bool
}

// Resolve decides the outcome of placing an entry of srcKind at a
// destination in state dst, under the given policy.
//
// Precedence when both merge and overwrite are enabled: merge wins for
// directory-to-directory collisions, overwrite wins for any collision
// involving a file.
func Resolve(dst Target, srcKind types.Kind, p Policy) Decision {
	if !dst.Exists {
		return Move
	}

	if dst.IsDir && srcKind == types.KindDir && p.Merge {
		return MergeInto
	}
	if p.Overwrite {
		return Overwrite
	}
	if p.Strict {
		return Fail
	}
	return Skip
}

// ResolveInner decides the outcome of an inner collision reached while
// merging a directory. Merge context changes the fallback: instead of
// skipping, colliding entries are moved under a collision-avoiding name so
// the source directory can still be emptied and removed.
func ResolveInner(dst Target, srcKind types.Kind, p Policy) Decision {
	if !dst.Exists {
		return Move
	}

	if dst.IsDir && srcKind == types.KindDir {
		return MergeInto
	}
	if p.Overwrite {
		return Overwrite
	}
	if p.Strict {
		return Fail
	}
	return Rename
}

// NextAvailable returns the first collision-avoiding variant of path that
// does not satisfy occupied: name.ext becomes name_1.ext, name_2.ext, and so
// on. occupied reports whether a candidate path is taken; the engine backs it
// with the real filesystem or its dry-run view.
func NextAvailable(path string, occupied func(string) bool) string {
	if !occupied(path) {
		return path
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	if base == "" {
		// Dotfiles like .env have no extension to preserve.
		base, ext = ext, ""
	}

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if !occupied(candidate) {
			return candidate
		}
	}
}
