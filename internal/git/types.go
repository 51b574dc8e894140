package git

// ChangeType describes how a staged file was changed
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

// Label returns the human-readable form used in prompts, with binary
// files reported as such regardless of the underlying change type.
func (c ChangeType) Label(binary bool) string {
	if binary {
		return "Binary"
	}
	switch c {
	case ChangeAdded:
		return "Added"
	case ChangeModified:
		return "Modified"
	case ChangeDeleted:
		return "Deleted"
	case ChangeRenamed:
		return "Renamed"
	}
	return string(c)
}

// RecentCommit is one entry of the recent history included in prompts
type RecentCommit struct {
	Hash    string
	Subject string
}

// StagedFile is a single file in the index together with its cached diff
type StagedFile struct {
	Path    string
	OldPath string // set for renames
	Change  ChangeType
	Diff    string // empty for binary files
	Binary  bool
}

// Snapshot is a read-only capture of the repository state at the start
// of an invocation. Nothing in the pipeline mutates it.
type Snapshot struct {
	Root          string
	Branch        string
	RecentCommits []RecentCommit
	// RecentPaths lists files touched by the recent commits, deduplicated,
	// most recent first. Scoring uses it to boost actively churning files.
	RecentPaths []string
	Staged      []StagedFile
	Untracked   []string
	UserName    string
	UserEmail   string
}

// SnapshotOptions bounds what a snapshot collects
type SnapshotOptions struct {
	// RecentCommitCount limits how much history is read (0 disables history)
	RecentCommitCount int
	// MaxDiffBytes caps the cached diff fetched per file (0 means no cap)
	MaxDiffBytes int
}

// CommitResult reports the outcome of applying a commit
type CommitResult struct {
	Hash         string
	Branch       string
	FilesChanged int
}

// RangeCommit is one commit in a from..to range, used for changelog and
// release notes generation.
type RangeCommit struct {
	Hash       string
	Subject    string
	Body       string
	Author     string
	FileStats  []FileStat
	Insertions int
	Deletions  int
}

// FileStat is the per-file numstat line of a commit
type FileStat struct {
	Path       string
	OldPath    string
	Change     ChangeType
	Insertions int
	Deletions  int
	Binary     bool
}
