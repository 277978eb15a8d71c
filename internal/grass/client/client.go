// Package client implements the GRASS control-channel driver: dial the
// server, send one line per command, read the response back in a single
// bounded recv, and transparently follow a "get port:"/"put port:" response
// with the corresponding data-channel transfer. Grounded on the teacher's
// root Client/control.go (Dial, sendCommand) but adapted for GRASS's
// no-status-code wire format, whose responses may span several lines, in
// place of FTP's multi-line numeric-coded responses.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/gonzalop/grass/internal/grass"
)

// Client is a single control-channel connection to a GRASS server.
type Client struct {
	conn    net.Conn
	host    string
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Client at Dial time.
type Option func(*Client)

// WithLogger overrides the default slog.Logger (which writes to stderr).
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds every control-channel round trip. 0 (the default)
// means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Dial connects to host:port and returns a ready Client.
func Dial(host string, port int, opts ...Option) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, grass.New(grass.KindIO, "could not connect").WithContext("addr", addr).WithContext("err", err.Error())
	}

	c := &Client{
		conn:   conn,
		host:   host,
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close tears down the control connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

var (
	getRe = regexp.MustCompile(`^get port: (\d+) size: (\d+)$`)
	putRe = regexp.MustCompile(`^put port: (\d+)$`)
)

// Result describes how a SendLine response resolved: whether it carried a
// data-channel handoff, and the raw response text in every case.
type Result struct {
	Raw        string
	DataPort   int
	DataSize   int64
	IsGetReply bool
	IsPutReply bool
}

// SendLine sends raw (a fully tokenized command line, no trailing newline)
// and reads back the response in a single bounded recv, recognizing the
// three distinguished prefixes: "OK", "get port: <P> size: <L>", and "put
// port: <P>". The response is read as one raw chunk rather than delimited
// by newline: shell-out responses (ls -l, grep -rl, a multi-line ping) can
// carry embedded newlines, and a line-oriented read would desync the next
// command/response pair on the first one it saw.
func (c *Client) SendLine(raw string) (*Result, error) {
	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
	}

	c.logger.Debug("grass_command", "line", raw)
	if _, err := fmt.Fprintf(c.conn, "%s\n", raw); err != nil {
		return nil, grass.New(grass.KindIO, "send failed").WithContext("err", err.Error())
	}

	buf := make([]byte, grass.MaxCharLen)
	n, err := c.conn.Read(buf)
	if n == 0 {
		if err == io.EOF || err == nil {
			return nil, grass.New(grass.KindIO, "connection closed by server")
		}
		return nil, grass.New(grass.KindIO, "recv failed").WithContext("err", err.Error())
	}
	line := trimNewline(string(buf[:n]))
	c.logger.Debug("grass_response", "line", line)

	res := &Result{Raw: line}
	if m := getRe.FindStringSubmatch(line); m != nil {
		port, _ := strconv.Atoi(m[1])
		size, _ := strconv.ParseInt(m[2], 10, 64)
		res.IsGetReply = true
		res.DataPort = port
		res.DataSize = size
	} else if m := putRe.FindStringSubmatch(line); m != nil {
		port, _ := strconv.Atoi(m[1])
		res.IsPutReply = true
		res.DataPort = port
	}
	return res, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// Get issues "get <remote>" and, on a get-port reply, connects to the
// announced data channel and streams exactly DataSize bytes into w.
func (c *Client) Get(remote string, w io.Writer) (*Result, error) {
	res, err := c.SendLine("get " + remote)
	if err != nil {
		return nil, err
	}
	if !res.IsGetReply {
		return res, nil
	}

	dataConn, err := net.Dial("tcp", net.JoinHostPort(c.host, strconv.Itoa(res.DataPort)))
	if err != nil {
		return res, grass.New(grass.KindIO, "data channel connect failed").WithContext("err", err.Error())
	}
	defer dataConn.Close()

	if _, err := io.CopyN(w, dataConn, res.DataSize); err != nil {
		return res, grass.New(grass.KindTransferFailed, "download failed").WithContext("err", err.Error())
	}
	return res, nil
}

// Put issues "put <remote> <size>" and, on a put-port reply, connects to
// the announced data channel and streams exactly size bytes from r.
func (c *Client) Put(remote string, size int64, r io.Reader) (*Result, error) {
	res, err := c.SendLine(fmt.Sprintf("put %s %d", remote, size))
	if err != nil {
		return nil, err
	}
	if !res.IsPutReply {
		return res, nil
	}

	dataConn, err := net.Dial("tcp", net.JoinHostPort(c.host, strconv.Itoa(res.DataPort)))
	if err != nil {
		return res, grass.New(grass.KindIO, "data channel connect failed").WithContext("err", err.Error())
	}
	defer dataConn.Close()

	if _, err := io.CopyN(dataConn, r, size); err != nil {
		return res, grass.New(grass.KindTransferFailed, "upload failed").WithContext("err", err.Error())
	}
	return res, nil
}
