// Package naming decides whether a proposed taxonomy title is acceptable and
// derives the URL slug that goes with it.
//
// Everything here is pure: callers pass in a snapshot of the existing titles
// or slugs for one taxonomy type and get back either a value or a typed
// failure. Serializing snapshot reads against writes is the caller's job; the
// store's unique indexes are the backstop.
package naming

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pkordes/fanblog/internal/domain"
)

// MaxSuffixAttempts bounds the numeric suffix search in DeriveSlug.
const MaxSuffixAttempts = 100

// Namer validates titles and derives slugs using one comparison language.
// A Namer is immutable and safe for concurrent use; casers and transformers
// are built per call because x/text keeps state inside them.
type Namer struct {
	lang        language.Tag
	maxLen      int
	maxAttempts int
}

// Option configures a Namer.
type Option func(*Namer)

// WithLanguage sets the language whose casing rules decide title equality,
// e.g. language.Turkish makes "I" and "ı" the same letter.
func WithLanguage(tag language.Tag) Option {
	return func(n *Namer) { n.lang = tag }
}

// WithMaxSuffixAttempts overrides MaxSuffixAttempts.
func WithMaxSuffixAttempts(attempts int) Option {
	return func(n *Namer) {
		if attempts > 0 {
			n.maxAttempts = attempts
		}
	}
}

// New returns a Namer. Without options it compares titles using
// language-neutral casing rules.
func New(opts ...Option) *Namer {
	n := &Namer{
		lang:        language.Und,
		maxLen:      domain.TitleSlugMaxLen,
		maxAttempts: MaxSuffixAttempts,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Language reports the comparison language.
func (n *Namer) Language() language.Tag {
	return n.lang
}

// keyer returns a function mapping a title to its comparison key. Two titles
// are the same title when their keys are equal.
func (n *Namer) keyer() func(string) string {
	lower := cases.Lower(n.lang)
	fold := cases.Fold()
	return func(s string) string {
		return fold.String(lower.String(norm.NFC.String(s)))
	}
}

var defaultNamer = New()

// Validate checks candidate against the default Namer. See Namer.Validate.
func Validate(candidate string, existingTitles []string, typ domain.TaxonomyType) (string, error) {
	return defaultNamer.Validate(candidate, existingTitles, typ)
}

// DeriveSlug derives a slug with the default Namer. See Namer.DeriveSlug.
func DeriveSlug(title string, existingSlugs []string) (string, error) {
	return defaultNamer.DeriveSlug(title, existingSlugs)
}
