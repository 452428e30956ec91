// Package sorter provides the orderings a file list can be sorted by.
// Every Sorter is a strict weak ordering that never reports two distinct
// names as equivalent, so a sorted list has exactly one position per name.
package sorter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"folio/internal/errors"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders file names.
type Sorter interface {
	Less(a, b string) bool
}

// Func adapts a less function to Sorter.
type Func func(a, b string) bool

func (f Func) Less(a, b string) bool { return f(a, b) }

// Mode names a built-in ordering.
type Mode string

const (
	ModeLexical Mode = "lexical"
	ModeNatural Mode = "natural"
	ModeCollate Mode = "collate"
)

// Modes lists the built-in orderings.
func Modes() []Mode {
	return []Mode{ModeLexical, ModeNatural, ModeCollate}
}

// New returns the built-in sorter for mode. locale is only used by
// ModeCollate.
func New(mode Mode, locale string) (Sorter, error) {
	switch mode {
	case ModeLexical, "":
		return Lexical(), nil
	case ModeNatural:
		return Natural(), nil
	case ModeCollate:
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, errors.NewConfigError("unknown locale", locale, errors.InvalidConfig, err)
		}
		return Collated(tag), nil
	}
	return nil, errors.NewConfigError("unknown sort mode", string(mode), errors.InvalidConfig, nil)
}

// Lexical orders names by their bytes.
func Lexical() Sorter {
	return Func(func(a, b string) bool { return a < b })
}

// Natural orders names case-insensitively with embedded digit runs
// compared by value, so "img2" sorts before "img10". Names that compare
// equal that way fall back to byte order.
func Natural() Sorter {
	return Func(func(a, b string) bool {
		if c := naturalCompare(a, b); c != 0 {
			return c < 0
		}
		return a < b
	})
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, _ := utf8.DecodeRuneInString(a)
		rb, _ := utf8.DecodeRuneInString(b)

		if isDigit(ra) && isDigit(rb) {
			da, restA := digitRun(a)
			db, restB := digitRun(b)
			if c := compareDigits(da, db); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}

		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		a = a[utf8.RuneLen(ra):]
		b = b[utf8.RuneLen(rb):]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	}
	return 1
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func digitRun(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// compareDigits compares two digit runs by numeric value; on equal value
// the run with fewer leading zeros sorts first.
func compareDigits(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}

// Collated orders names with the Unicode collation rules of tag, ignoring
// case and comparing digit runs numerically. The collator is not safe for
// concurrent use; a file list only sorts on its consumer goroutine.
func Collated(tag language.Tag) Sorter {
	c := collate.New(tag, collate.IgnoreCase, collate.Numeric)
	return Func(func(a, b string) bool {
		if r := c.CompareString(a, b); r != 0 {
			return r < 0
		}
		return a < b
	})
}
