// Package locale resolves the host's number-formatting locale and hands out
// x/text message printers for it.
//
// Resolution follows POSIX precedence: LC_ALL, then LC_NUMERIC, then LANG.
// Values such as "de_DE.UTF-8" or "fr_CA@euro" are reduced to a BCP 47 tag.
// "C", "POSIX", empty and unparsable values fall back to Fallback.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fallback is used when the environment names no usable locale.
var Fallback = language.AmericanEnglish

// envKeys lists the variables consulted by FromEnv, highest priority first.
var envKeys = []string{"LC_ALL", "LC_NUMERIC", "LANG"}

// lookupEnv is a seam for tests.
var lookupEnv = os.Getenv

// FromEnv returns the locale named by the environment.
func FromEnv() language.Tag {
	for _, k := range envKeys {
		v := strings.TrimSpace(lookupEnv(k))
		if v == "" {
			continue
		}
		// The first variable that is set decides, even if it names "C".
		if tag, ok := parsePOSIX(v); ok {
			return tag
		}
		return Fallback
	}
	return Fallback
}

// Parse accepts either a BCP 47 tag ("de-DE") or a POSIX locale name
// ("de_DE.UTF-8"). An empty string resolves from the environment.
func Parse(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return FromEnv()
	}
	if tag, ok := parsePOSIX(s); ok {
		return tag
	}
	return Fallback
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// DefaultPrinter returns a printer for the environment's locale.
func DefaultPrinter() *message.Printer {
	return Printer(FromEnv())
}

func parsePOSIX(v string) (language.Tag, bool) {
	// Strip codeset and modifier: ll_CC.codeset@modifier
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	switch strings.ToUpper(v) {
	case "", "C", "POSIX":
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}
