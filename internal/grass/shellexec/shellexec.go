// Package shellexec runs the handful of GRASS commands (ls, ping, grep,
// date) that delegate to the host shell, capturing combined output the
// same way the original server did: redirect a shell invocation into a
// session-scoped temp file, then read the capped result back.
//
// This is a deliberate injection surface carried forward from the source
// system rather than redesigned away (spec.md documents the hardened
// alternative — argv-based exec with no shell — as a known improvement,
// not a requirement); Sanitize is the defense-in-depth the original
// applied at the same layer.
package shellexec

import (
	"os"
	"os/exec"
	"strings"

	"github.com/gonzalop/grass/internal/grass"
)

// escapedChars is the exact 18-character metacharacter set the original
// sanitize() backslash-escaped before interpolating a user-supplied argument
// into a shell command string. The sanitized value lands inside an
// already-double-quoted shell argument, where POSIX only treats a backslash
// as an escape ahead of $, `, ", \, or a newline: for those four characters
// of the set the backslash is consumed, while for the rest of the set it
// stays in the argument as a literal backslash.
const escapedChars = `\"` + "`" + `$({[)}];&|~?!<>`

// Sanitize backslash-escapes every shell metacharacter in s.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(escapedChars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// CaptureOutput runs cmdLine through the host shell, redirecting stdout
// and stderr into a fresh temp file under tempDir, then reads back up to
// grass.MaxResponseLen bytes. The temp file is always removed before
// returning, regardless of outcome.
func CaptureOutput(cmdLine, tempDir, discriminator string) (string, error) {
	tempPath := tempDir + "/.grass-out-" + discriminator
	defer os.Remove(tempPath)

	full := "(" + cmdLine + ") > " + tempPath + " 2>&1"
	cmd := exec.Command("/bin/sh", "-c", full)
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return "", grass.New(grass.KindIO, "could not run command").WithContext("err", err.Error())
		}
		// A non-zero exit from the invoked tool is not itself a GRASS
		// error: the captured stderr in tempPath is the response.
	}

	f, err := os.Open(tempPath)
	if err != nil {
		return "", grass.New(grass.KindIO, "could not read command output").WithContext("err", err.Error())
	}
	defer f.Close()

	buf := make([]byte, grass.MaxResponseLen)
	n, _ := f.Read(buf)
	return string(buf[:n]), nil
}
