package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gonzalop/grass/internal/grass"
	grasspath "github.com/gonzalop/grass/internal/grass/path"
	"github.com/gonzalop/grass/internal/grass/transfer"
)

// handleGet validates the requested file, opens it, and spawns a transfer
// task that will accept exactly one data-channel connection on a fresh
// ephemeral port and stream the file to it. The task owns the open
// *os.File for its whole lifetime rather than a path string handed across
// the goroutine boundary, which is what the original's use-after-free
// passed instead.
func handleGet(sess *session, argv []string) error {
	resolved, err := grasspath.Resolve(sess.cwd, argv[0], sess.server.config.BaseDir,
		"Error: Please specify file name within current directory")
	if err != nil {
		return err
	}
	rel := relToRoot(resolved, sess.server.config.BaseDir)

	f, err := sess.server.root.Open(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return grass.New(grass.KindNotFound, "No such file")
		}
		return grass.New(grass.KindIO, "could not open file").WithContext("err", err.Error())
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return grass.New(grass.KindIO, "could not stat file").WithContext("err", err.Error())
	}
	if info.IsDir() {
		f.Close()
		return grass.New(grass.KindDirError, "not a file")
	}
	size := info.Size()

	ln, err := transfer.Listen("tcp")
	if err != nil {
		f.Close()
		return err
	}
	port := transfer.Port(ln)

	go func() {
		defer ln.Close()
		conn, err := transfer.AcceptTimeout(ln)
		if err != nil {
			f.Close()
			sess.server.logger.Warn("get_transfer_failed", "session_id", sess.id, "err", err)
			return
		}
		task := &transfer.Task{Conn: conn, File: f, Name: rel, Len: size, Direction: transfer.Send}
		if _, err := task.Run(); err != nil {
			sess.server.logger.Warn("get_transfer_failed", "session_id", sess.id, "err", err)
		}
	}()

	sess.respBuf = fmt.Sprintf("get port: %d size: %d", port, size)
	return nil
}

// handlePut creates the destination file and spawns a transfer task that
// will accept one data-channel connection and read exactly the declared
// number of bytes into it. A short transfer removes the partial file.
func handlePut(sess *session, argv []string) error {
	size, err := strconv.ParseInt(argv[1], 10, 64)
	if err != nil || size < 0 {
		return grass.New(grass.KindParseError, "invalid size")
	}

	resolved, err := grasspath.Resolve(sess.cwd, argv[0], sess.server.config.BaseDir,
		"Error: Please specify file name within executable's directory")
	if err != nil {
		return err
	}
	rel := relToRoot(resolved, sess.server.config.BaseDir)

	f, err := sess.server.root.Create(rel)
	if err != nil {
		return grass.New(grass.KindIO, "could not create file").WithContext("err", err.Error())
	}

	ln, err := transfer.Listen("tcp")
	if err != nil {
		f.Close()
		return err
	}
	port := transfer.Port(ln)

	fullPath := sess.server.config.BaseDir + "/" + rel

	go func() {
		defer ln.Close()
		conn, err := transfer.AcceptTimeout(ln)
		if err != nil {
			f.Close()
			os.Remove(fullPath)
			sess.server.logger.Warn("put_transfer_failed", "session_id", sess.id, "err", err)
			return
		}
		task := &transfer.Task{Conn: conn, File: f, Name: fullPath, Len: size, Direction: transfer.Recv}
		if _, err := task.Run(); err != nil {
			sess.server.logger.Warn("put_transfer_failed", "session_id", sess.id, "err", err)
		}
	}()

	sess.respBuf = fmt.Sprintf("put port: %d", port)
	return nil
}
