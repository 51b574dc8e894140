package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Repo wraps git plumbing for a single repository. All reads are
// snapshot-style: nothing here mutates the repository except Commit.
type Repo struct {
	root   string
	runner Runner
}

// Open locates the repository containing dir and returns a Repo rooted
// at its top level.
func Open(ctx context.Context, dir string) (*Repo, error) {
	out, err := NewRunner(dir).Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, NotARepository(dir, err)
	}
	root := strings.TrimSpace(out)
	return &Repo{root: root, runner: NewRunner(root)}, nil
}

// NewRepo builds a Repo around an explicit runner. Tests use this with a
// scripted runner.
func NewRepo(root string, runner Runner) *Repo {
	return &Repo{root: root, runner: runner}
}

// Root returns the absolute path of the repository top level.
func (r *Repo) Root() string {
	return r.root
}

// CurrentBranch returns the checked-out branch name. On an unborn branch
// it falls back to the symbolic ref so new repositories still report one.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err == nil {
		return strings.TrimSpace(out), nil
	}
	out, symErr := r.runner.Run(ctx, "symbolic-ref", "--short", "HEAD")
	if symErr != nil {
		return "", fmt.Errorf("failed to resolve branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RecentCommits returns up to n commits from HEAD, newest first. A
// repository without history yields an empty list, not an error.
func (r *Repo) RecentCommits(ctx context.Context, n int) ([]RecentCommit, error) {
	if n <= 0 {
		return nil, nil
	}
	out, err := r.runner.Run(ctx, "log", "-n", strconv.Itoa(n), "--format=%H%x1f%s%x1e")
	if err != nil {
		if isEmptyHistoryError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recent commits: %w", err)
	}

	var commits []RecentCommit
	for _, record := range splitRecords(out) {
		hash, subject, found := strings.Cut(record, "\x1f")
		if !found {
			continue
		}
		commits = append(commits, RecentCommit{
			Hash:    strings.TrimSpace(hash),
			Subject: strings.TrimSpace(subject),
		})
	}
	return commits, nil
}

// StagedFiles returns the files in the index together with their cached
// diffs. maxDiffBytes caps each diff (0 means uncapped).
func (r *Repo) StagedFiles(ctx context.Context, maxDiffBytes int) ([]StagedFile, error) {
	out, err := r.runner.Run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to read repository status: %w", err)
	}

	entries := parseStatus(out)
	files := make([]StagedFile, 0, len(entries))
	for _, entry := range entries {
		diff, err := r.stagedDiff(ctx, entry)
		if err != nil {
			return nil, err
		}

		file := StagedFile{
			Path:    entry.Path,
			OldPath: entry.OldPath,
			Change:  entry.Change,
		}
		if isBinaryDiff(diff) {
			file.Binary = true
		} else {
			file.Diff = capDiff(diff, maxDiffBytes)
		}
		files = append(files, file)
	}

	slog.Debug("Collected staged files", "count", len(files))
	return files, nil
}

func (r *Repo) stagedDiff(ctx context.Context, entry statusEntry) (string, error) {
	args := []string{"diff", "--cached", "--no-color", "--"}
	if entry.OldPath != "" {
		args = append(args, entry.OldPath)
	}
	args = append(args, entry.Path)

	out, err := r.runner.Run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to read staged diff for %s: %w", entry.Path, err)
	}
	return out, nil
}

// UntrackedFiles lists paths present in the working tree but unknown to
// the index, honoring ignore rules.
func (r *Repo) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.runner.Run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// UserIdentity reads the configured author identity. Missing values come
// back empty rather than failing the snapshot.
func (r *Repo) UserIdentity(ctx context.Context) (name, email string) {
	if out, err := r.runner.Run(ctx, "config", "user.name"); err == nil {
		name = strings.TrimSpace(out)
	}
	if out, err := r.runner.Run(ctx, "config", "user.email"); err == nil {
		email = strings.TrimSpace(out)
	}
	return name, email
}

// Snapshot captures the repository state for one invocation.
func (r *Repo) Snapshot(ctx context.Context, opts SnapshotOptions) (*Snapshot, error) {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	staged, err := r.StagedFiles(ctx, opts.MaxDiffBytes)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return nil, NothingStaged()
	}

	commits, err := r.RecentCommits(ctx, opts.RecentCommitCount)
	if err != nil {
		return nil, err
	}

	untracked, err := r.UntrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	name, email := r.UserIdentity(ctx)

	return &Snapshot{
		Root:          r.root,
		Branch:        branch,
		RecentCommits: commits,
		RecentPaths:   r.recentPaths(ctx, opts.RecentCommitCount),
		Staged:        staged,
		Untracked:     untracked,
		UserName:      name,
		UserEmail:     email,
	}, nil
}

// recentPaths lists the files touched by the last n commits, deduplicated
// in first-seen order. Best effort: an empty repository yields nothing.
func (r *Repo) recentPaths(ctx context.Context, n int) []string {
	if n <= 0 {
		return nil
	}
	out, err := r.runner.Run(ctx, "log", "-n", strconv.Itoa(n), "--name-only", "--format=")
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}
	return paths
}

// Commit applies message to the index. With verify enabled the pre-commit
// hook runs first and a failure aborts before git is asked to commit.
func (r *Repo) Commit(ctx context.Context, message string, verify bool) (*CommitResult, error) {
	args := []string{"commit", "-m", message}
	if verify {
		if err := r.ExecuteHook(ctx, "pre-commit"); err != nil {
			return nil, fmt.Errorf("pre-commit hook failed: %w", err)
		}
	} else {
		args = append(args, "--no-verify")
	}

	if _, err := r.runner.Run(ctx, args...); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	result := &CommitResult{}
	if out, err := r.runner.Run(ctx, "rev-parse", "HEAD"); err == nil {
		result.Hash = strings.TrimSpace(out)
	}
	if branch, err := r.CurrentBranch(ctx); err == nil {
		result.Branch = branch
	}
	if out, err := r.runner.Run(ctx, "show", "--numstat", "--format="); err == nil {
		result.FilesChanged = len(parseNumstat(out))
	}

	if verify {
		if err := r.ExecuteHook(ctx, "post-commit"); err != nil {
			slog.Warn("post-commit hook failed", "error", err)
		}
	}

	slog.Debug("Created commit", "hash", result.Hash, "files", result.FilesChanged)
	return result, nil
}

// ExecuteHook runs the named hook from the repository's hooks directory.
// A missing hook is not an error.
func (r *Repo) ExecuteHook(ctx context.Context, name string) error {
	hooksDir, err := r.runner.Run(ctx, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return fmt.Errorf("failed to locate hooks directory: %w", err)
	}

	hookPath := strings.TrimSpace(hooksDir)
	if !filepath.IsAbs(hookPath) {
		hookPath = filepath.Join(r.root, hookPath)
	}
	hookPath = filepath.Join(hookPath, name)

	info, statErr := os.Stat(hookPath)
	if statErr != nil || info.IsDir() || info.Mode()&0o111 == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, hookPath)
	cmd.Dir = r.root
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s hook: %s", name, strings.TrimSpace(string(out)))
	}
	return nil
}

// CommitsBetween returns the commits reachable from to but not from,
// oldest first, each with per-file stats.
func (r *Repo) CommitsBetween(ctx context.Context, from, to string) ([]RangeCommit, error) {
	spec := fmt.Sprintf("%s..%s", from, to)
	out, err := r.runner.Run(ctx, "log", "--reverse", "--format=%H%x1f%an%x1f%s%x1f%b%x1e", spec)
	if err != nil {
		return nil, fmt.Errorf("failed to read commits in %s: %w", spec, err)
	}

	var commits []RangeCommit
	for _, record := range splitRecords(out) {
		fields := strings.SplitN(record, "\x1f", 4)
		if len(fields) < 3 {
			continue
		}
		commit := RangeCommit{
			Hash:    strings.TrimSpace(fields[0]),
			Author:  fields[1],
			Subject: fields[2],
		}
		if len(fields) == 4 {
			commit.Body = strings.TrimSpace(fields[3])
		}

		statsOut, err := r.runner.Run(ctx, "show", "--numstat", "--format=", commit.Hash)
		if err != nil {
			return nil, fmt.Errorf("failed to read stats for %s: %w", commit.Hash, err)
		}
		commit.FileStats = parseNumstat(statsOut)
		for _, stat := range commit.FileStats {
			commit.Insertions += stat.Insertions
			commit.Deletions += stat.Deletions
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// splitRecords splits \x1e-terminated log records, dropping empties.
func splitRecords(out string) []string {
	var records []string
	for _, record := range strings.Split(out, "\x1e") {
		if strings.TrimSpace(record) != "" {
			records = append(records, strings.TrimPrefix(record, "\n"))
		}
	}
	return records
}

func isEmptyHistoryError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not have any commits") ||
		strings.Contains(msg, "unknown revision")
}

// isBinaryDiff reports whether cached diff output describes a binary change.
func isBinaryDiff(diff string) bool {
	return strings.Contains(diff, "Binary files ") ||
		strings.Contains(diff, "GIT binary patch")
}

// capDiff bounds a diff at maxBytes, cutting on a line boundary.
func capDiff(diff string, maxBytes int) string {
	if maxBytes <= 0 || len(diff) <= maxBytes {
		return diff
	}
	cut := strings.LastIndexByte(diff[:maxBytes], '\n')
	if cut <= 0 {
		cut = maxBytes
	}
	return diff[:cut] + fmt.Sprintf("\n[diff capped at %d bytes]\n", maxBytes)
}
