package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// DirName is the journal storage directory created inside each flatten root.
// The inventory never treats it as a movable entry.
const DirName = ".levelzap"

// Store manages the journals of a single flatten root.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a Store for the given flatten root. The storage directory
// is not created until a journal is finalized into it.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("journal root cannot be empty")
	}
	return &Store{dir: filepath.Join(root, DirName)}, nil
}

// Dir returns the journal storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// NewWriter opens a journal writer for a run against root.
func (s *Store) NewWriter(root string, mode Mode) *Writer {
	now := time.Now().UTC()
	return &Writer{
		store: s,
		log: Log{
			ID:        generateID(now),
			Root:      root,
			CreatedAt: now,
			Mode:      mode,
		},
	}
}

// Writer accumulates actions for a single run. The flatten engine is the only
// writer of a run's journal; Finalize persists it exactly once.
type Writer struct {
	store     *Store
	log       Log
	finalized bool
}

// Append records an action. The order of appends is the order of application
// and must be preserved, reversal depends on it.
func (w *Writer) Append(a Action) int {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	w.log.Actions = append(w.log.Actions, a)
	return len(w.log.Actions) - 1
}

// MarkNonReversible flags a previously appended action as unrecoverable.
// Used when a later overwrite of the same destination discards the content
// the earlier action moved there.
func (w *Writer) MarkNonReversible(index int) {
	if index >= 0 && index < len(w.log.Actions) {
		w.log.Actions[index].Reversible = false
	}
}

// Len returns the number of actions recorded so far.
func (w *Writer) Len() int {
	return len(w.log.Actions)
}

// Log returns a snapshot of the journal built so far. Dry runs use this to
// report without persisting.
func (w *Writer) Log() Log {
	l := w.log
	l.ActionCount = len(l.Actions)
	return l
}

// Finalize persists the journal and returns its ID. A journal may only be
// finalized once.
func (w *Writer) Finalize() (string, error) {
	if w.finalized {
		return "", errors.New("journal already finalized")
	}

	w.log.ActionCount = len(w.log.Actions)
	if err := w.store.write(&w.log); err != nil {
		return "", err
	}
	w.finalized = true
	return w.log.ID, nil
}

// write persists a log atomically using the temp file + rename pattern.
func (s *Store) write(l *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling journal: %w", err)
	}

	path := filepath.Join(s.dir, l.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming journal: %w", err)
	}

	return nil
}

// List returns summaries of all journals, newest first.
func (s *Store) List() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(logs))
	for _, l := range logs {
		summaries = append(summaries, Summary{
			ID:          l.ID,
			Root:        l.Root,
			CreatedAt:   l.CreatedAt,
			ActionCount: l.ActionCount,
			DryRun:      l.Mode.DryRun,
			Reverted:    l.Reverted,
		})
	}
	return summaries, nil
}

// Load reads a journal by ID.
func (s *Store) Load(id string) (*Log, error) {
	if id == "" {
		return nil, errors.New("journal ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.read(id + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrLogNotFound, id)
		}
		return nil, err
	}
	return l, nil
}

// Latest returns the most recent journal, or types.ErrLogNotFound when the
// store holds none.
func (s *Store) Latest() (*Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, types.ErrLogNotFound
	}
	return &logs[0], nil
}

// Verify checks the structural integrity of a journal: required fields,
// monotonic timestamps, and that the declared action count matches the
// entries present.
func (s *Store) Verify(id string) (*ValidityReport, error) {
	l, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return VerifyLog(l), nil
}

// VerifyLog runs the structural checks against an in-memory journal.
func VerifyLog(l *Log) *ValidityReport {
	report := &ValidityReport{ID: l.ID, ActionCount: len(l.Actions)}

	if l.ID == "" {
		report.Problems = append(report.Problems, "missing journal ID")
	}
	if l.Root == "" {
		report.Problems = append(report.Problems, "missing root path")
	}
	if l.CreatedAt.IsZero() {
		report.Problems = append(report.Problems, "missing creation time")
	}
	if l.ActionCount != len(l.Actions) {
		report.Problems = append(report.Problems,
			fmt.Sprintf("declared action count %d, found %d", l.ActionCount, len(l.Actions)))
	}

	var prev time.Time
	for i, a := range l.Actions {
		if a.Op == "" {
			report.Problems = append(report.Problems, fmt.Sprintf("action %d: missing op", i))
		}
		if a.Source == "" {
			report.Problems = append(report.Problems, fmt.Sprintf("action %d: missing source", i))
		}
		switch a.Op {
		case OpMove, OpMoveRenamed, OpOverwrite:
			if a.Destination == "" {
				report.Problems = append(report.Problems, fmt.Sprintf("action %d: missing destination", i))
			}
		}
		if a.Timestamp.IsZero() {
			report.Problems = append(report.Problems, fmt.Sprintf("action %d: missing timestamp", i))
		} else {
			if a.Timestamp.Before(prev) {
				report.Problems = append(report.Problems, fmt.Sprintf("action %d: timestamp out of order", i))
			}
			prev = a.Timestamp
		}
	}

	report.Valid = len(report.Problems) == 0
	return report
}

// Remove deletes a journal file.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", types.ErrLogNotFound, id)
		}
		return fmt.Errorf("removing journal: %w", err)
	}
	return nil
}

// MarkReverted stamps a journal as reverted without touching its actions.
// This is the only mutation a historical journal ever sees.
func (s *Store) MarkReverted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.read(id + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", types.ErrLogNotFound, id)
		}
		return err
	}

	l.Reverted = true
	l.RevertedAt = time.Now().UTC()
	return s.writeLocked(l)
}

// writeLocked persists a log; the caller holds s.mu.
func (s *Store) writeLocked(l *Log) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling journal: %w", err)
	}

	path := filepath.Join(s.dir, l.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming journal: %w", err)
	}
	return nil
}

// readAll loads every parseable journal, newest first. The caller holds s.mu.
func (s *Store) readAll() ([]Log, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Log{}, nil
		}
		return nil, fmt.Errorf("reading journal directory: %w", err)
	}

	var logs []Log
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		l, err := s.read(f.Name())
		if err != nil {
			// Unparseable files surface through Verify, not List.
			continue
		}
		logs = append(logs, *l)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs, nil
}

// read loads and parses one journal file. The caller holds s.mu.
func (s *Store) read(filename string) (*Log, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}

	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptLog, filename, err)
	}
	return &l, nil
}

// generateID creates a journal ID like "run-2024-06-15T10-30-00-1a2b3c4d".
// The timestamp prefix keeps IDs sortable; the uuid suffix keeps them unique
// when two runs start within the same second.
func generateID(now time.Time) string {
	ts := now.Format("2006-01-02T15-04-05")
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("run-%s-%s", ts, suffix)
}
