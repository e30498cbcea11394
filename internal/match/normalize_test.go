package match

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeClaim(t *testing.T) {
	profile := NormalizeClaim("  Breaking:\tPIB   DEBUNKED the cable!  ", "Shadow Deal", " Twitter ")
	if profile.Normalized != "breaking: pib debunked the cable!" {
		t.Fatalf("unexpected normalized text %q", profile.Normalized)
	}
	want := []string{"breaking", "pib", "debunked", "the", "cable"}
	if strings.Join(profile.Tokens, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected tokens %v", profile.Tokens)
	}
	if profile.Source != "twitter" {
		t.Fatalf("unexpected source %q", profile.Source)
	}
}

func TestFingerprintStability(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]string
		same bool
	}{
		{"case and spacing", [3]string{"A  hoax", "T", "S"}, [3]string{"a hoax", "t", "s"}, true},
		{"different title", [3]string{"a hoax", "one", ""}, [3]string{"a hoax", "two", ""}, false},
		{"field boundaries", [3]string{"ab", "c", ""}, [3]string{"a", "bc", ""}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fa := NormalizeClaim(tc.a[0], tc.a[1], tc.a[2]).Fingerprint
			fb := NormalizeClaim(tc.b[0], tc.b[1], tc.b[2]).Fingerprint
			if (fa == fb) != tc.same {
				t.Fatalf("fingerprints %s / %s, expected same=%v", fa, fb, tc.same)
			}
		})
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("ब", 400)
	got := Preview(long)
	if utf8.RuneCountInString(got) != previewRunes+1 {
		t.Fatalf("expected %d runes got %d", previewRunes+1, utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview split a rune")
	}
	if Preview("short  text") != "short text" {
		t.Fatalf("short preview should only collapse whitespace")
	}
}
