package transfer

import (
	"net"
	"os"
	"testing"
	"time"
)

func TestSendTaskDeliversFileBytes(t *testing.T) {
	content := []byte("the quick brown fox jumps over lazy d")

	srcFile, err := os.CreateTemp(t.TempDir(), "src")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := srcFile.Write(content); err != nil {
		t.Fatal(err)
	}
	srcFile.Seek(0, 0)

	dstPath := t.TempDir() + "/dst"
	dstFile, err := os.Create(dstPath)
	if err != nil {
		t.Fatal(err)
	}

	serverLn, err := Listen("tcp")
	if err != nil {
		t.Fatal(err)
	}
	defer serverLn.Close()

	clientConn := make(chan net.Conn, 1)
	go func() {
		c, err := net.Dial("tcp", serverLn.Addr().String())
		if err != nil {
			t.Error(err)
			return
		}
		clientConn <- c
	}()

	serverConn, err := serverLn.Accept()
	if err != nil {
		t.Fatal(err)
	}

	sendTask := &Task{Conn: serverConn, File: srcFile, Len: int64(len(content)), Direction: Send}
	go sendTask.Run()

	select {
	case cc := <-clientConn:
		defer cc.Close()
		buf := make([]byte, len(content))
		read := 0
		for read < len(buf) {
			n, err := cc.Read(buf[read:])
			read += n
			if err != nil {
				break
			}
		}
		if string(buf[:read]) != string(content) {
			t.Fatalf("got %q, want %q", buf[:read], content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client connection")
	}

	dstFile.Close()
}

func TestRecvChunkedRemovesPartialFileOnShortTransfer(t *testing.T) {
	path := t.TempDir() + "/partial"
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	srv, cli := net.Pipe()
	done := make(chan struct{})
	go func() {
		task := &Task{Conn: srv, File: f, Name: path, Len: 100, Direction: Recv}
		task.Run()
		close(done)
	}()

	cli.Write([]byte("short"))
	cli.Close()
	<-done

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected partial file to be removed, stat err = %v", err)
	}
}
