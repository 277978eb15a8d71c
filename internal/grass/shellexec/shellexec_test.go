package shellexec

import (
	"strings"
	"testing"
)

func TestSanitizeEscapesMetacharacters(t *testing.T) {
	in := `a;b&c|d$e`
	out := Sanitize(in)
	for _, c := range []string{";", "&", "|", "$"} {
		if !strings.Contains(out, `\`+c) {
			t.Errorf("Sanitize(%q) = %q, missing escaped %q", in, out, c)
		}
	}
}

func TestSanitizeLeavesPlainTextAlone(t *testing.T) {
	in := "hello-world_123"
	if got := Sanitize(in); got != in {
		t.Errorf("Sanitize(%q) = %q, want unchanged", in, got)
	}
}

func TestCaptureOutputRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out, err := CaptureOutput("echo hello", dir, "test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("CaptureOutput output = %q, want hello", out)
	}
}

func TestCaptureOutputTruncatesAtCap(t *testing.T) {
	dir := t.TempDir()
	out, err := CaptureOutput("yes x | head -c 10000", dir, "test2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) > 4096 {
		t.Errorf("expected output capped at MaxResponseLen, got %d bytes", len(out))
	}
}
