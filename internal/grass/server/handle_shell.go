package server

import "github.com/gonzalop/grass/internal/grass/shellexec"

func handlePing(sess *session, argv []string) error {
	out, err := shellexec.CaptureOutput(
		"ping \""+shellexec.Sanitize(argv[0])+"\" -c 1",
		sess.server.tempDir, sess.tempDiscriminator())
	if err != nil {
		return err
	}
	sess.respBuf = out
	return nil
}

func handleDate(sess *session, _ []string) error {
	out, err := shellexec.CaptureOutput("date", sess.server.tempDir, sess.tempDiscriminator())
	if err != nil {
		return err
	}
	sess.respBuf = out
	return nil
}

// handleGrep searches the current directory recursively for files
// matching pattern, then restores the shell's own working directory to
// base — mirroring the original's `cd "<cwd>"; grep -rl "<pattern>"; cd
// "<base>"` invocation, which matters only because it runs in a throwaway
// shell subprocess, not because it affects sess.cwd.
func handleGrep(sess *session, argv []string) error {
	pattern := shellexec.Sanitize(argv[0])
	base := shellexec.Sanitize(sess.server.config.BaseDir)
	cmd := "cd \"" + shellexec.Sanitize(sess.cwd) + "\"; grep -rl \"" + pattern + "\" .; cd \"" + base + "\""
	out, err := shellexec.CaptureOutput(cmd, sess.server.tempDir, sess.tempDiscriminator())
	if err != nil {
		return err
	}
	sess.respBuf = out
	return nil
}
