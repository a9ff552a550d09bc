package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"":               "unknown",
		"  ":             "unknown",
		"My Talk (2024)": "my_talk__2024",
		"dQw4w9WgXcQ":    "dqw4w9wgxcq",
		"--keep_me--":    "keep_me",
		"???":            "unknown",
	}
	for in, want := range cases {
		if got := SanitizeToken(in); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(" a/b:c? "); got != "a-b-c" {
		t.Fatalf("SanitizeFileName = %q", got)
	}
	if got := SanitizeFileName("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
