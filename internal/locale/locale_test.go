package locale

import (
	"testing"

	"golang.org/x/text/language"
)

// TestFromEnvPrecedence is not parallel: it swaps the package env seam.
func TestFromEnvPrecedence(t *testing.T) {
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })

	tests := []struct {
		name string
		env  map[string]string
		want language.Tag
	}{
		{"nothing set", nil, Fallback},
		{"LANG only", map[string]string{"LANG": "de_DE.UTF-8"}, language.MustParse("de-DE")},
		{"LC_NUMERIC beats LANG", map[string]string{"LANG": "de_DE.UTF-8", "LC_NUMERIC": "fr_FR"}, language.MustParse("fr-FR")},
		{"LC_ALL beats all", map[string]string{"LC_ALL": "en_GB.UTF-8", "LC_NUMERIC": "fr_FR", "LANG": "de_DE"}, language.MustParse("en-GB")},
		{"C falls back", map[string]string{"LANG": "C.UTF-8"}, Fallback},
		{"POSIX falls back", map[string]string{"LC_ALL": "POSIX", "LANG": "de_DE"}, Fallback},
		{"modifier stripped", map[string]string{"LANG": "fr_CA@euro"}, language.MustParse("fr-CA")},
		{"whitespace ignored", map[string]string{"LC_ALL": "  ", "LANG": "es_ES"}, language.MustParse("es-ES")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookupEnv = func(k string) string { return tt.env[k] }
			if got := FromEnv(); got != tt.want {
				t.Fatalf("FromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want language.Tag
	}{
		{"de-DE", language.MustParse("de-DE")},
		{"de_DE.UTF-8", language.MustParse("de-DE")},
		{"en", language.English},
		{"C", Fallback},
		{"!!", Fallback},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrinterGroupsDigits(t *testing.T) {
	t.Parallel()

	if got := Printer(language.AmericanEnglish).Sprintf("%d", 25000); got != "25,000" {
		t.Fatalf("en-US = %q, want 25,000", got)
	}
	if got := Printer(language.German).Sprintf("%d", 30000); got != "30.000" {
		t.Fatalf("de = %q, want 30.000", got)
	}
}
