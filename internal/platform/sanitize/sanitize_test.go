package sanitize_test

import (
	"testing"

	"github.com/harborcrest/pms/internal/platform/sanitize"
)

func TestEmail(t *testing.T) {
	if got := sanitize.Email("  Guest@Example.COM "); got != "guest@example.com" {
		t.Errorf("Email = %q", got)
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"+60 12-345 6789": "+60123456789",
		"(03) 2162 2233":  "0321622233",
		"  +1 555.0100  ": "+15550100",
		"":                "",
	}
	for in, want := range cases {
		if got := sanitize.Phone(in); got != want {
			t.Errorf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+60123456789", "0321622233", "+12"}
	for _, p := range valid {
		if !sanitize.ValidPhone(p) {
			t.Errorf("ValidPhone(%q) should be true", p)
		}
	}
	invalid := []string{"", "+1", "12345678901234567", "+60-123"}
	for _, p := range invalid {
		if sanitize.ValidPhone(p) {
			t.Errorf("ValidPhone(%q) should be false", p)
		}
	}
}

func TestTextStripsControlCharacters(t *testing.T) {
	if got := sanitize.Text("ok\x00\x07\ttab\nline"); got != "ok\ttab\nline" {
		t.Errorf("Text = %q", got)
	}
}

func TestHTMLStripsScript(t *testing.T) {
	got := sanitize.HTML(`<p>hello</p><script>alert(1)</script>`)
	if got != "<p>hello</p>" {
		t.Errorf("HTML = %q", got)
	}
}
