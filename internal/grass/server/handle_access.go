package server

import (
	"strings"

	"github.com/gonzalop/grass/internal/grass"
)

// handleLogin moves Anonymous -> LoginPending(user), dropping any prior
// authentication first.
func handleLogin(sess *session, argv []string) error {
	if sess.user != nil && sess.authState == stateAuthenticated {
		sess.user.Logout()
	}
	sess.user = nil

	u, ok := sess.server.config.Users.Find(argv[0])
	if !ok {
		sess.authState = stateAnonymous
		return grass.New(grass.KindNotFound, "access denied!")
	}
	sess.authState = stateLoginPending
	sess.user = u
	return nil
}

// handlePass completes a pending login. It is only reachable while
// authState is LoginPending (session.runCommand's pre-check clears the
// pending state on any other command first).
func handlePass(sess *session, argv []string) error {
	if sess.authState != stateLoginPending || sess.user == nil {
		sess.authState = stateAnonymous
		return grass.NewSpaced(grass.KindProtocolViolation, "pass must follow login")
	}

	u := sess.user
	if u.Password != argv[0] {
		sess.authState = stateAnonymous
		sess.user = nil
		return grass.NewSpaced(grass.KindAuthFailed, "Authentication failed.")
	}
	if !u.TryLogin() {
		sess.authState = stateAnonymous
		sess.user = nil
		return grass.New(grass.KindAuthFailed, "user already logged in")
	}

	sess.authState = stateAuthenticated
	return nil
}

func handleWhoami(sess *session, _ []string) error {
	if sess.authState != stateAuthenticated || sess.user == nil {
		return grass.NewSpaced(grass.KindPermission, "No logged user")
	}
	sess.respBuf = sess.user.Name
	return nil
}

func handleW(sess *session, _ []string) error {
	names := sess.server.config.Users.LoggedInNames()
	sess.respBuf = strings.Join(names, " ")
	return nil
}

func handleLogout(sess *session, _ []string) error {
	if sess.user != nil && sess.authState == stateAuthenticated {
		sess.user.Logout()
	}
	sess.user = nil
	sess.authState = stateAnonymous
	return nil
}

func handleExit(sess *session, argv []string) error {
	// Same effect as logout from the server's side; the client tears down
	// the TCP connection on its own after reading this response.
	return handleLogout(sess, argv)
}
