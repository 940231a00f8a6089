package git

import (
	"strconv"
	"strings"
)

// FileStat holds the line counts of a single path from git diff --numstat
type FileStat struct {
	Path       string
	Insertions int
	Deletions  int
	Binary     bool
}

// NumStat is the parsed form of git diff --numstat output
type NumStat struct {
	Files      []FileStat
	Insertions int
	Deletions  int
}

// ByPath indexes the parsed rows by their (destination) path.
// Later rows win if a path appears twice.
func (n NumStat) ByPath() map[string]FileStat {
	m := make(map[string]FileStat, len(n.Files))
	for _, f := range n.Files {
		m[f.Path] = f
	}
	return m
}

// ParseNumStat parses "insertions<TAB>deletions<TAB>path" lines.
// A "-" count (binary file) is zero. Malformed lines are skipped.
func ParseNumStat(text string) NumStat {
	var stat NumStat

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}

		ins, okIns := parseCount(parts[0])
		del, okDel := parseCount(parts[1])
		if !okIns || !okDel {
			continue
		}

		stat.Files = append(stat.Files, FileStat{
			Path:       unquotePath(resolveRenamePath(parts[2])),
			Insertions: ins,
			Deletions:  del,
			Binary:     parts[0] == "-" && parts[1] == "-",
		})
		stat.Insertions += ins
		stat.Deletions += del
	}

	return stat
}

func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// resolveRenamePath maps numstat rename notation to the destination path:
//
//	old.go => new.go         -> new.go
//	pkg/{old => new}/file.go -> pkg/new/file.go
func resolveRenamePath(path string) string {
	if !strings.Contains(path, " => ") {
		return path
	}

	open := strings.Index(path, "{")
	closeIdx := strings.LastIndex(path, "}")
	if open >= 0 && closeIdx > open {
		inner := path[open+1 : closeIdx]
		if idx := strings.Index(inner, " => "); idx >= 0 {
			dest := path[:open] + inner[idx+len(" => "):] + path[closeIdx+1:]
			return strings.ReplaceAll(dest, "//", "/")
		}
	}

	idx := strings.Index(path, " => ")
	return path[idx+len(" => "):]
}

// unquotePath decodes a path git wrapped in double quotes with C-style escapes
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if u, err := strconv.Unquote(p); err == nil {
		return u
	}
	return p
}
