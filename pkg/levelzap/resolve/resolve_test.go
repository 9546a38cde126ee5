package resolve

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                     string
		merge, overwrite, strict bool
		wantErr                  bool
	}{
		{name: "none"},
		{name: "merge only", merge: true},
		{name: "overwrite only", overwrite: true},
		{name: "strict only", strict: true},
		{name: "merge and overwrite", merge: true, overwrite: true},
		{name: "merge and strict", merge: true, strict: true},
		{name: "overwrite and strict", overwrite: true, strict: true},
		{name: "all three rejected", merge: true, overwrite: true, strict: true, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewPolicy(tt.merge, tt.overwrite, tt.strict)
			if tt.wantErr {
				if !errors.Is(err, ErrPolicyConflict) {
					t.Fatalf("NewPolicy() error = %v, want ErrPolicyConflict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPolicy() error = %v", err)
			}
			if p.Merge != tt.merge || p.Overwrite != tt.overwrite || p.Strict != tt.strict {
				t.Errorf("NewPolicy() = %+v", p)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dst     Target
		srcKind types.Kind
		policy  Policy
		want    Decision
	}{
		{
			name:    "free destination moves",
			dst:     Target{},
			srcKind: types.KindFile,
			want:    Move,
		},
		{
			name:    "free destination moves for dirs too",
			dst:     Target{},
			srcKind: types.KindDir,
			policy:  Policy{Strict: true},
			want:    Move,
		},
		{
			name:    "collision without policy skips",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			want:    Skip,
		},
		{
			name:    "dir onto dir with merge merges",
			dst:     Target{Exists: true, IsDir: true},
			srcKind: types.KindDir,
			policy:  Policy{Merge: true},
			want:    MergeInto,
		},
		{
			name:    "file onto dir with merge skips",
			dst:     Target{Exists: true, IsDir: true},
			srcKind: types.KindFile,
			policy:  Policy{Merge: true},
			want:    Skip,
		},
		{
			name:    "dir onto file with merge skips",
			dst:     Target{Exists: true},
			srcKind: types.KindDir,
			policy:  Policy{Merge: true},
			want:    Skip,
		},
		{
			name:    "overwrite replaces file",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Overwrite: true},
			want:    Overwrite,
		},
		{
			name:    "merge wins over overwrite for dir pairs",
			dst:     Target{Exists: true, IsDir: true},
			srcKind: types.KindDir,
			policy:  Policy{Merge: true, Overwrite: true},
			want:    MergeInto,
		},
		{
			name:    "overwrite wins for file collisions when both set",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Merge: true, Overwrite: true},
			want:    Overwrite,
		},
		{
			name:    "strict collision fails",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Strict: true},
			want:    Fail,
		},
		{
			name:    "strict with merge still merges dirs",
			dst:     Target{Exists: true, IsDir: true},
			srcKind: types.KindDir,
			policy:  Policy{Merge: true, Strict: true},
			want:    MergeInto,
		},
		{
			name:    "strict with merge fails file collisions",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Merge: true, Strict: true},
			want:    Fail,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Resolve(tt.dst, tt.srcKind, tt.policy); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveInner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dst     Target
		srcKind types.Kind
		policy  Policy
		want    Decision
	}{
		{
			name:    "free destination moves",
			dst:     Target{},
			srcKind: types.KindFile,
			want:    Move,
		},
		{
			name:    "nested dir pair merges without the merge flag",
			dst:     Target{Exists: true, IsDir: true},
			srcKind: types.KindDir,
			want:    MergeInto,
		},
		{
			name:    "file collision renames instead of skipping",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			want:    Rename,
		},
		{
			name:    "overwrite replaces inner files",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Overwrite: true},
			want:    Overwrite,
		},
		{
			name:    "strict inner collision fails",
			dst:     Target{Exists: true},
			srcKind: types.KindFile,
			policy:  Policy{Strict: true},
			want:    Fail,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolveInner(tt.dst, tt.srcKind, tt.policy); got != tt.want {
				t.Errorf("ResolveInner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Decision
		want string
	}{
		{Move, "move"},
		{MergeInto, "merge"},
		{Overwrite, "overwrite"},
		{Rename, "rename"},
		{Skip, "skip"},
		{Fail, "fail"},
		{Decision(99), "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Decision(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestNextAvailable(t *testing.T) {
	t.Parallel()

	occupied := func(taken ...string) func(string) bool {
		set := make(map[string]bool, len(taken))
		for _, p := range taken {
			set[p] = true
		}
		return func(p string) bool { return set[p] }
	}

	tests := []struct {
		name  string
		path  string
		taken []string
		want  string
	}{
		{
			name: "free path unchanged",
			path: "/a/report.txt",
			want: "/a/report.txt",
		},
		{
			name:  "first variant",
			path:  "/a/report.txt",
			taken: []string{"/a/report.txt"},
			want:  "/a/report_1.txt",
		},
		{
			name:  "probes past taken variants",
			path:  "/a/report.txt",
			taken: []string{"/a/report.txt", "/a/report_1.txt", "/a/report_2.txt"},
			want:  "/a/report_3.txt",
		},
		{
			name:  "no extension",
			path:  "/a/Makefile",
			taken: []string{"/a/Makefile"},
			want:  "/a/Makefile_1",
		},
		{
			name:  "dotfile keeps leading dot",
			path:  "/a/.env",
			taken: []string{"/a/.env"},
			want:  "/a/.env_1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NextAvailable(filepath.FromSlash(tt.path), occupied(tt.taken...))
			if got != tt.want {
				t.Errorf("NextAvailable(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
