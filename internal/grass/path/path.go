// Package path canonicalizes absolute paths and enforces the sandbox
// boundary a GRASS session's cwd may never escape.
//
// Canonicalization is lexical only: it never touches the filesystem and
// never follows symlinks, so the sandbox test always runs against the same
// string the caller will later open, closing the TOCTOU window a
// stat-then-open check would leave.
package path

import (
	"strings"

	"github.com/gonzalop/grass/internal/grass"
)

// Canonicalize collapses repeated separators, drops "." segments, and pops
// the previous segment on "..". A ".." that would pop past the root fails
// with grass.KindDirError (out of sandbox), never silently clamping to "/".
func Canonicalize(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", grass.New(grass.KindDirError, "path must be absolute").WithContext("path", p)
	}

	segments := strings.Split(p, "/")
	stack := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", grass.New(grass.KindDirError, "access denied!").WithContext("path", p)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	if len(stack) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(stack, "/"), nil
}

// AppendRelative joins rel onto base and canonicalizes the result. rel must
// be non-empty and must not look like an absolute path or a home-relative
// path ("~..."); user-supplied path arguments are always relative to cwd.
func AppendRelative(base, rel string) (string, error) {
	if rel == "" {
		return "", grass.New(grass.KindParseError, "empty path")
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "~") {
		return "", grass.New(grass.KindPermission, "access denied!").WithContext("path", rel)
	}

	base = strings.TrimRight(base, "/")
	return Canonicalize(base + "/" + rel)
}

// IsSubpathOf reports whether candidate (assumed already canonical) is
// parent itself or a path lexically nested under it. A bare strings.HasPrefix
// would wrongly admit "/basefoo" into "/base"; the separator after parent
// is mandatory.
func IsSubpathOf(candidate, parent string) bool {
	parent = strings.TrimRight(parent, "/")
	if parent == "" {
		parent = "/"
	}
	if candidate == parent {
		return true
	}
	if parent == "/" {
		return strings.HasPrefix(candidate, "/")
	}
	return strings.HasPrefix(candidate, parent+"/")
}

// TooLong reports whether p exceeds the sandbox depth budget relative to
// baseDir's own length, independent of how deep baseDir itself lies.
func TooLong(p, baseDir string) bool {
	return len(p) > len(baseDir)+maxBasePathLen
}

const maxBasePathLen = 128

// Resolve is the handler-facing entry point: join rel onto cwd, reject
// anything too long, and require the result stay under baseDir. It returns
// the canonical absolute path on success. syntaxLine is the exact wire line
// written when rel fails the "/"-or-"~" syntax check; each caller (get, put,
// mkdir, rm) has its own documented wording, so it is not hardcoded here.
func Resolve(cwd, rel, baseDir, syntaxLine string) (string, error) {
	if strings.ContainsAny(rel, "/~") {
		return "", grass.NewLine(grass.KindPermission, syntaxLine).WithContext("path", rel)
	}

	resolved, err := AppendRelative(cwd, rel)
	if err != nil {
		return "", err
	}
	if TooLong(resolved, baseDir) {
		return "", grass.New(grass.KindTooLarge, "path too long").WithContext("path", resolved)
	}
	if !IsSubpathOf(resolved, baseDir) {
		return "", grass.New(grass.KindDirError, "access denied!").WithContext("path", resolved)
	}
	return resolved, nil
}

// ResolveTraversable is like Resolve but allows rel to contain "/" and ".."
// segments (used by cd, which is the one command that legitimately
// navigates through subdirectories rather than naming a bare leaf).
func ResolveTraversable(cwd, rel, baseDir string) (string, error) {
	if strings.HasPrefix(rel, "~") {
		return "", grass.New(grass.KindPermission, "access denied!").WithContext("path", rel)
	}

	resolved, err := AppendRelative(cwd, rel)
	if err != nil {
		return "", err
	}
	if TooLong(resolved, baseDir) {
		return "", grass.New(grass.KindTooLarge, "path too long").WithContext("path", resolved)
	}
	if !IsSubpathOf(resolved, baseDir) {
		return "", grass.New(grass.KindDirError, "access denied!").WithContext("path", resolved)
	}
	return resolved, nil
}
