package server

import (
	"bufio"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/gonzalop/grass/internal/grass"
	"github.com/gonzalop/grass/internal/grass/config"
	"github.com/gonzalop/grass/internal/grass/tokenize"
)

// authState is the session's position in the two-step login/pass machine.
type authState int

const (
	stateAnonymous authState = iota
	stateLoginPending
	stateAuthenticated
)

func (a authState) String() string {
	switch a {
	case stateLoginPending:
		return "LoginPending"
	case stateAuthenticated:
		return "Authenticated"
	default:
		return "Anonymous"
	}
}

var sessionSeq atomic.Int64

// session owns every field below exclusively for the lifetime of its one
// serve() goroutine; no other goroutine reads or writes them, matching the
// teacher's per-session single-owner discipline (only UserDirectory's
// login bit is shared, and that has its own narrow lock).
type session struct {
	server *Server
	conn   net.Conn
	reader *bufio.Reader

	id int64

	cwd       string
	authState authState
	user      *config.User

	respBuf string
}

func newSession(s *Server, conn net.Conn) *session {
	return &session{
		server:    s,
		conn:      conn,
		reader:    bufio.NewReader(conn),
		id:        sessionSeq.Add(1),
		cwd:       s.config.BaseDir,
		authState: stateAnonymous,
		respBuf:   grass.OK,
	}
}

// tempDiscriminator names this session's scratch temp file uniquely, the
// way the original keyed output_temp_path off the connection's file
// descriptor or a monotonically increasing session id.
func (sess *session) tempDiscriminator() string {
	return fmt.Sprintf("%d", sess.id)
}

// serve runs the per-command recv/dispatch/respond loop until the control
// socket errors or returns EOF, at which point it performs logout cleanup
// exactly as a disconnect transition requires.
func (sess *session) serve() {
	defer sess.conn.Close()
	defer sess.cleanupOnExit()

	sess.server.logger.Info("session_started", "session_id", sess.id, "remote", sess.conn.RemoteAddr().String())

	for {
		line, err := sess.reader.ReadString('\n')
		if err != nil {
			return
		}
		line = trimNewline(line)
		if line == "" {
			continue
		}

		sess.respBuf = grass.OK
		sess.runCommand(line)

		if _, err := fmt.Fprintf(sess.conn, "%s\n", sess.respBuf); err != nil {
			return
		}
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// runCommand tokenizes and dispatches one line, writing the outcome into
// sess.respBuf. It never returns an error to the caller: every failure
// path is captured in the response buffer, matching the propagation
// policy that only a control-socket read failure ends the session.
func (sess *session) runCommand(line string) {
	tok, err := tokenize.Tokenize(line)
	if err != nil {
		sess.respBuf = asError(err).ResponseLine()
		return
	}

	// Special pre-check: anything other than `pass` while LoginPending
	// aborts the pending login back to Anonymous.
	if sess.authState == stateLoginPending && tok.Command != "pass" {
		sess.authState = stateAnonymous
		sess.respBuf = grass.New(grass.KindProtocolViolation, "pass must be called directly after login").ResponseLine()
		return
	}

	spec, ok := commandTable[tok.Command]
	if !ok {
		sess.respBuf = grass.Newf(grass.KindNotFound, "unknown command %q", tok.Command).ResponseLine()
		return
	}
	if err := tokenize.CheckArity(len(tok.Argv), spec.arity); err != nil {
		sess.respBuf = asError(err).ResponseLine()
		return
	}
	if spec.reqAuth && sess.authState != stateAuthenticated {
		sess.respBuf = grass.New(grass.KindPermission, "This command requires authentication").ResponseLine()
		return
	}

	if err := spec.fn(sess, tok.Argv); err != nil {
		sess.respBuf = asError(err).ResponseLine()
	}
}

// cleanupOnExit clears any authentication this session was holding so a
// disconnect frees the user's logged_in slot for the next session.
func (sess *session) cleanupOnExit() {
	if sess.user != nil && sess.authState == stateAuthenticated {
		sess.user.Logout()
	}
	sess.user = nil
	sess.server.logger.Info("session_ended", "session_id", sess.id)
}

func asError(err error) *grass.Error {
	if ge, ok := err.(*grass.Error); ok {
		return ge
	}
	return grass.New(grass.KindIO, err.Error())
}
