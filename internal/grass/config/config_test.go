package config

import (
	"strings"
	"testing"
)

func TestParseHappyPath(t *testing.T) {
	src := `# a sandbox
base ./sandbox
port 8080
user alice secret
user bob hunter2
`
	cfg, err := parse(strings.NewReader(src), "/srv/grass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BaseDir != "/srv/grass/sandbox" {
		t.Errorf("BaseDir = %q, want /srv/grass/sandbox", cfg.BaseDir)
	}
	alice, ok := cfg.Users.Find("alice")
	if !ok || alice.Password != "secret" {
		t.Errorf("alice not found or wrong password: %+v ok=%v", alice, ok)
	}
	if _, ok := cfg.Users.Find("carol"); ok {
		t.Errorf("unexpected user carol")
	}
}

func TestParseDuplicateUserOverwrites(t *testing.T) {
	src := `base /srv
port 1
user alice first
user alice second
`
	cfg, err := parse(strings.NewReader(src), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := cfg.Users.Find("alice")
	if u.Password != "second" {
		t.Errorf("Password = %q, want second", u.Password)
	}
	if len(cfg.Users.users) != 1 {
		t.Errorf("expected single directory entry, got %d", len(cfg.Users.users))
	}
}

func TestParseMissingBaseIsError(t *testing.T) {
	src := "port 1\n"
	if _, err := parse(strings.NewReader(src), "/"); err == nil {
		t.Fatalf("expected error for missing base directive")
	}
}

func TestParseUnparseablePortIsFatal(t *testing.T) {
	src := "base /srv\nport notanumber\n"
	if _, err := parse(strings.NewReader(src), "/"); err == nil {
		t.Fatalf("expected fatal parse error for unparseable port")
	}
}

func TestParseUnknownDirective(t *testing.T) {
	src := "base /srv\nport 1\nbogus thing\n"
	if _, err := parse(strings.NewReader(src), "/"); err == nil {
		t.Fatalf("expected error for unknown directive")
	}
}

func TestUserTryLoginIsExclusive(t *testing.T) {
	u := &User{Name: "alice"}
	if !u.TryLogin() {
		t.Fatalf("first TryLogin should succeed")
	}
	if u.TryLogin() {
		t.Fatalf("second concurrent TryLogin should fail while still logged in")
	}
	u.Logout()
	if !u.TryLogin() {
		t.Fatalf("TryLogin after Logout should succeed again")
	}
}
