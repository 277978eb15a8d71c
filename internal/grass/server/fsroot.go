package server

import (
	"os"
	"strings"

	"github.com/gonzalop/grass/internal/grass"
)

// relToRoot converts a canonical absolute path already known to be a
// subpath of baseDir into the root-handle-relative form os.Root's methods
// expect ("." for baseDir itself, "sub/path" for anything nested).
func relToRoot(canonical, baseDir string) string {
	rel := strings.TrimPrefix(canonical, baseDir)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "."
	}
	return rel
}

// openRoot jails every filesystem handler operation within baseDir, the
// same defense-in-depth the teacher's fsContext applies on top of its own
// lexical path checks: even a canonicalizer bug cannot walk the live
// filesystem outside this handle.
func openRoot(baseDir string) (*os.Root, error) {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, grass.New(grass.KindIO, "could not open base directory").WithContext("err", err.Error())
	}
	return root, nil
}
