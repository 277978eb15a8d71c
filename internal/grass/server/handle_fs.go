package server

import (
	"os"

	"github.com/gonzalop/grass/internal/grass"
	grasspath "github.com/gonzalop/grass/internal/grass/path"
	"github.com/gonzalop/grass/internal/grass/shellexec"
)

// handleLs shells out to `ls -l <cwd>` and captures the output, the one
// filesystem command the original delegated to the host tool rather than
// implementing directly.
func handleLs(sess *session, _ []string) error {
	out, err := shellexec.CaptureOutput(
		"ls -l \""+shellexec.Sanitize(sess.cwd)+"\"",
		sess.server.tempDir, sess.tempDiscriminator())
	if err != nil {
		return err
	}
	sess.respBuf = out
	return nil
}

// handleCd resolves argv[0] against cwd, allowing embedded "/" and ".."
// segments (cd is the one command that legitimately traverses), and
// requires the destination to exist and be a directory within the
// sandbox.
func handleCd(sess *session, argv []string) error {
	resolved, err := grasspath.ResolveTraversable(sess.cwd, argv[0], sess.server.config.BaseDir)
	if err != nil {
		return err
	}

	rel := relToRoot(resolved, sess.server.config.BaseDir)
	info, err := sess.server.root.Stat(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return grass.New(grass.KindNotFound, "no such directory")
		}
		return grass.New(grass.KindIO, "could not stat directory").WithContext("err", err.Error())
	}
	if !info.IsDir() {
		return grass.New(grass.KindDirError, "not a directory")
	}

	sess.cwd = resolved
	return nil
}

// mkdirRmSyntaxLine is the wire line handle_mkdir/handle_rm in server.c both
// use when argv[0] contains "/" or "~".
const mkdirRmSyntaxLine = "Error : Please specify file or directory name within current directory"

// handleMkdir rejects any argument containing "/" or "~" at the syntax
// layer (Resolve enforces this) before creating a directory with owner
// rwx, matching the original's 0700 mode.
func handleMkdir(sess *session, argv []string) error {
	resolved, err := grasspath.Resolve(sess.cwd, argv[0], sess.server.config.BaseDir, mkdirRmSyntaxLine)
	if err != nil {
		return err
	}
	rel := relToRoot(resolved, sess.server.config.BaseDir)
	if err := sess.server.root.Mkdir(rel, 0o700); err != nil {
		if os.IsExist(err) {
			return grass.New(grass.KindIO, "already exists")
		}
		return grass.New(grass.KindIO, "could not create directory").WithContext("err", err.Error())
	}
	return nil
}

// handleRm removes a file or empty directory named by a bare leaf argument.
func handleRm(sess *session, argv []string) error {
	resolved, err := grasspath.Resolve(sess.cwd, argv[0], sess.server.config.BaseDir, mkdirRmSyntaxLine)
	if err != nil {
		return err
	}
	rel := relToRoot(resolved, sess.server.config.BaseDir)
	if err := sess.server.root.Remove(rel); err != nil {
		if os.IsNotExist(err) {
			return grass.New(grass.KindNotFound, "no such file or directory")
		}
		return grass.New(grass.KindIO, "could not remove").WithContext("err", err.Error())
	}
	return nil
}
