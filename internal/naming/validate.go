package naming

import (
	"strings"
	"unicode/utf8"

	"github.com/pkordes/fanblog/internal/domain"
)

// rule inspects one property of a candidate title and returns a failure, or
// nil to let the next rule run.
type rule func(candidate string) *domain.TitleError

// Validate decides whether candidate may be used as a title of type typ.
//
// existingTitles is every current title of that type, minus the entry being
// renamed. Rules run in order and the first failure wins:
//   - empty after trimming: EmptyTitle
//   - more than domain.TitleSlugMaxLen characters: TitleTooLong
//   - equal to an existing title ignoring case: DuplicateTitle
//
// On success candidate is returned unchanged. Failures are *domain.TitleError.
func (n *Namer) Validate(candidate string, existingTitles []string, typ domain.TaxonomyType) (string, error) {
	rules := []rule{
		func(c string) *domain.TitleError {
			if strings.TrimSpace(c) == "" {
				return domain.NewEmptyTitleError(typ, c)
			}
			return nil
		},
		func(c string) *domain.TitleError {
			if utf8.RuneCountInString(c) > n.maxLen {
				return domain.NewTitleTooLongError(typ, c, n.maxLen)
			}
			return nil
		},
		func(c string) *domain.TitleError {
			if n.titleSet(existingTitles).contains(c) {
				return domain.NewDuplicateTitleError(typ, c)
			}
			return nil
		},
	}

	for _, r := range rules {
		if err := r(candidate); err != nil {
			return "", err
		}
	}
	return candidate, nil
}

// Available reports whether candidate passes Validate.
func (n *Namer) Available(candidate string, existingTitles []string, typ domain.TaxonomyType) bool {
	_, err := n.Validate(candidate, existingTitles, typ)
	return err == nil
}

// titleSet is a set of comparison keys built once per validation.
type titleSet struct {
	key  func(string) string
	keys map[string]struct{}
}

func (n *Namer) titleSet(titles []string) titleSet {
	s := titleSet{key: n.keyer(), keys: make(map[string]struct{}, len(titles))}
	for _, t := range titles {
		s.keys[s.key(strings.TrimSpace(t))] = struct{}{}
	}
	return s
}

func (s titleSet) contains(title string) bool {
	_, ok := s.keys[s.key(strings.TrimSpace(title))]
	return ok
}

// IndexOf returns the index of the first entry in titles that is the same
// title as candidate, or -1.
func (n *Namer) IndexOf(candidate string, titles []string) int {
	key := n.keyer()
	want := key(strings.TrimSpace(candidate))
	for i, t := range titles {
		if key(strings.TrimSpace(t)) == want {
			return i
		}
	}
	return -1
}
