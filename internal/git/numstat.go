package git

import (
	"strconv"
	"strings"
)

// parseNumstat parses git --numstat output into per-file stats. Binary
// entries carry "-" counts and are flagged instead.
func parseNumstat(out string) []FileStat {
	var stats []FileStat
	for _, line := range strings.Split(out, "\n") {
		if stat, ok := parseNumstatLine(line); ok {
			stats = append(stats, stat)
		}
	}
	return stats
}

func parseNumstatLine(line string) (FileStat, bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 || fields[2] == "" {
		return FileStat{}, false
	}

	stat := FileStat{Change: ChangeModified}
	if fields[0] == "-" || fields[1] == "-" {
		stat.Binary = true
	} else {
		ins, err := strconv.Atoi(fields[0])
		if err != nil {
			return FileStat{}, false
		}
		del, err := strconv.Atoi(fields[1])
		if err != nil {
			return FileStat{}, false
		}
		stat.Insertions = ins
		stat.Deletions = del
	}

	stat.Path, stat.OldPath = resolveNumstatPath(unquotePath(fields[2]))
	if stat.OldPath != "" {
		stat.Change = ChangeRenamed
	}
	return stat, true
}

// resolveNumstatPath expands the rename notations numstat uses:
// "dir/{old => new}/file" and the plain "old => new".
func resolveNumstatPath(p string) (path, oldPath string) {
	if open := strings.Index(p, "{"); open >= 0 {
		if closing := strings.Index(p[open:], "}"); closing >= 0 {
			inner := p[open+1 : open+closing]
			if old, current, found := strings.Cut(inner, " => "); found {
				prefix, suffix := p[:open], p[open+closing+1:]
				return collapsePath(prefix + current + suffix), collapsePath(prefix + old + suffix)
			}
		}
	}
	if old, current, found := strings.Cut(p, " => "); found {
		return current, old
	}
	return p, ""
}

// collapsePath removes the doubled separators an empty rename segment
// leaves behind, as in "dir/{ => sub}/file".
func collapsePath(p string) string {
	return strings.ReplaceAll(p, "//", "/")
}
