// Package journal provides the append-only operation log for flatten runs.
// Each non-dry run persists exactly one journal, an ordered record of every
// filesystem mutation, precise enough to be replayed in reverse.
package journal

import "time"

// Op is the type of a recorded filesystem mutation.
type Op string

const (
	// OpMove is a plain move of an entry to its destination.
	OpMove Op = "move"
	// OpMoveRenamed is a move under a collision-avoiding name. The action
	// records the original conflicting destination.
	OpMoveRenamed Op = "move_renamed"
	// OpOverwrite is a destructive move that replaced an existing destination.
	OpOverwrite Op = "overwrite"
	// OpDeleteDir is the removal of an emptied directory.
	OpDeleteDir Op = "delete_dir"
	// OpDeleteFile is the removal of a file (cleanup mode, zero-byte files).
	OpDeleteFile Op = "delete_file"
	// OpSkip records an entry left in place due to a collision.
	OpSkip Op = "skip"
)

// Outcome records how an action went.
type Outcome string

const (
	// OutcomeSucceeded means the mutation was applied.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means the mutation hit an I/O failure and was skipped.
	OutcomeFailed Outcome = "failed"
	// OutcomeSimulated means the action belongs to a dry run and nothing
	// was mutated.
	OutcomeSimulated Outcome = "simulated"
)

// Action is a single recorded filesystem mutation.
type Action struct {
	Op          Op        `json:"op"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     Outcome   `json:"outcome"`

	// Reversible is false when the content this action moved was later
	// destroyed by an overwrite of the same destination, making the
	// source unrecoverable.
	Reversible bool `json:"reversible"`

	// Conflict is the original conflicting destination for move_renamed
	// actions.
	Conflict string `json:"conflict,omitempty"`

	// Size is the size in bytes of the moved or deleted file, when known.
	Size int64 `json:"size,omitempty"`

	// Error holds the I/O failure message for failed actions.
	Error string `json:"error,omitempty"`
}

// Mode captures the policy flags a run was executed with.
type Mode struct {
	DryRun    bool `json:"dry_run"`
	Merge     bool `json:"merge"`
	Overwrite bool `json:"overwrite"`
	Strict    bool `json:"strict"`
	Recurse   bool `json:"recurse"`
}

// Log is a finalized run journal. It is written once at the end of a run and
// never mutated afterwards, except for the explicit reverted stamp.
type Log struct {
	ID          string    `json:"id"`
	Root        string    `json:"root"`
	CreatedAt   time.Time `json:"created_at"`
	Mode        Mode      `json:"mode"`
	ActionCount int       `json:"action_count"`
	Reverted    bool      `json:"reverted"`
	RevertedAt  time.Time `json:"reverted_at,omitzero"`
	Actions     []Action  `json:"actions"`
}

// Summary is the listing view of a journal, exposed for --list-logs style
// consumption without loading every action.
type Summary struct {
	ID          string    `json:"id"`
	Root        string    `json:"root"`
	CreatedAt   time.Time `json:"created_at"`
	ActionCount int       `json:"action_count"`
	DryRun      bool      `json:"dry_run"`
	Reverted    bool      `json:"reverted"`
}

// ValidityReport is the result of structural verification of a journal.
// It does not check that the filesystem still matches the journal.
type ValidityReport struct {
	ID          string   `json:"id"`
	Valid       bool     `json:"valid"`
	ActionCount int      `json:"action_count"`
	Problems    []string `json:"problems,omitempty"`
}
