package i18n

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Language
	}{
		{"en", English},
		{"EN", English},
		{"kn", Kannada},
		{"kn-IN", Kannada},
		{"hi_IN", Hindi},
		{"", English},
		{"ta", English},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRenderFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	got := Render(MsgApology, Language("ta"))
	if got != catalog[MsgApology][English] {
		t.Fatalf("Render() = %q, want English apology", got)
	}
}

func TestRenderUnknownIDRendersApology(t *testing.T) {
	t.Parallel()

	got := Render(MessageID("no_such_message"), Kannada)
	if got != catalog[MsgApology][Kannada] {
		t.Fatalf("Render() = %q, want Kannada apology", got)
	}
}

func TestRenderFormatsArguments(t *testing.T) {
	t.Parallel()

	got := Render(MsgDiagnosisReady, English, "early blight")
	if !strings.Contains(got, "early blight") {
		t.Fatalf("Render() = %q, want disease name included", got)
	}
	if strings.Contains(got, "%s") {
		t.Fatalf("Render() left an unexpanded verb: %q", got)
	}
}

func TestEveryMessageHasAllLanguages(t *testing.T) {
	t.Parallel()

	for id, byLang := range catalog {
		for _, lang := range []Language{English, Hindi, Kannada} {
			if strings.TrimSpace(byLang[lang]) == "" {
				t.Errorf("message %s missing %s text", id, lang)
			}
		}
	}
}
