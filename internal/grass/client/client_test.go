package client

import (
	"bufio"
	"net"
	"strings"
	"testing"
)

// fakeServer speaks just enough of the control protocol for these tests:
// it echoes canned responses keyed by the exact line it received.
func fakeServer(t *testing.T, responses map[string]string) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			resp, ok := responses[line]
			if !ok {
				resp = "OK"
			}
			conn.Write([]byte(resp + "\n"))
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func TestSendLineParsesGetReply(t *testing.T) {
	addr, stop := fakeServer(t, map[string]string{
		"get notes.txt": "get port: 4242 size: 37",
	})
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port := mustAtoi(t, portStr)

	c, err := Dial(host, port)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := c.SendLine("get notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsGetReply || res.DataPort != 4242 || res.DataSize != 37 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSendLineParsesPutReply(t *testing.T) {
	addr, stop := fakeServer(t, map[string]string{
		"put notes.txt 10": "put port: 5555",
	})
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port := mustAtoi(t, portStr)

	c, err := Dial(host, port)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := c.SendLine("put notes.txt 10")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsPutReply || res.DataPort != 5555 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSendLinePlainOK(t *testing.T) {
	addr, stop := fakeServer(t, nil)
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port := mustAtoi(t, portStr)

	c, err := Dial(host, port)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := c.SendLine("whoami")
	if err != nil {
		t.Fatal(err)
	}
	if res.IsGetReply || res.IsPutReply || res.Raw != "OK" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			t.Fatalf("not numeric: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n
}
