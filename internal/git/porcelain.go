package git

import (
	"strconv"
	"strings"
)

// statusEntry is one staged record parsed from git status --porcelain
type statusEntry struct {
	Path    string
	OldPath string
	Change  ChangeType
}

// parseStatus extracts the staged entries from porcelain v1 output.
// Worktree-only changes (first column space or ?) are skipped.
func parseStatus(out string) []statusEntry {
	var entries []statusEntry
	for _, line := range strings.Split(out, "\n") {
		if entry, ok := parseStatusLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseStatusLine(line string) (statusEntry, bool) {
	if len(line) < 4 {
		return statusEntry{}, false
	}

	index := line[0]
	rest := line[3:]

	var change ChangeType
	switch index {
	case 'A', 'C':
		change = ChangeAdded
	case 'M', 'T':
		change = ChangeModified
	case 'D':
		change = ChangeDeleted
	case 'R':
		change = ChangeRenamed
	default:
		return statusEntry{}, false
	}

	entry := statusEntry{Change: change}
	if change == ChangeRenamed || index == 'C' {
		old, current, found := strings.Cut(rest, " -> ")
		if !found {
			return statusEntry{}, false
		}
		entry.OldPath = unquotePath(old)
		entry.Path = unquotePath(current)
	} else {
		entry.Path = unquotePath(rest)
	}

	if entry.Path == "" {
		return statusEntry{}, false
	}
	return entry, true
}

// unquotePath undoes the C-style quoting git applies to paths containing
// special characters.
func unquotePath(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		if unquoted, err := strconv.Unquote(p); err == nil {
			return unquoted
		}
	}
	return p
}
