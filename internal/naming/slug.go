package naming

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pkordes/fanblog/internal/domain"
)

// letters that NFKD does not decompose into ASCII.
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o", "đ", "d", "Đ", "d", "ł", "l", "Ł", "l",
	"þ", "th", "Þ", "th",
)

// Slugify converts a title into a slug without considering collisions.
//
//   - accents are stripped ("Café" → "cafe") and common ligatures expanded
//   - letters are lowercased
//   - every run of characters outside [a-z0-9] becomes one hyphen
//   - leading and trailing hyphens are trimmed
//   - the result is cut to domain.TitleSlugMaxLen
//
// Titles with no Latin letters or digits slugify to "".
func Slugify(title string) string {
	return slugify(title, domain.TitleSlugMaxLen)
}

func slugify(title string, maxLen int) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, ligatures.Replace(title))
	if err != nil {
		s = title
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return truncate(b.String(), maxLen)
}

// truncate cuts an ASCII slug to max bytes and drops a dangling hyphen.
func truncate(slug string, max int) string {
	if len(slug) <= max {
		return slug
	}
	return strings.TrimRight(slug[:max], "-")
}

// fallbackSlug names titles that slugify to nothing. It is stable for a given
// title so DeriveSlug stays deterministic.
func fallbackSlug(title string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(title))
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// DeriveSlug returns the slug for title that does not collide with
// existingSlugs (all current slugs of the same taxonomy type, minus the entry
// being renamed).
//
// On collision "-2", "-3", ... is appended, shortening the base so the result
// stays within domain.TitleSlugMaxLen. If no free suffix is found within the
// attempt bound the error wraps domain.ErrSlugCollisionUnresolved.
func (n *Namer) DeriveSlug(title string, existingSlugs []string) (string, error) {
	base := slugify(title, n.maxLen)
	if base == "" {
		base = fallbackSlug(title)
	}

	taken := make(map[string]struct{}, len(existingSlugs))
	for _, s := range existingSlugs {
		taken[s] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base, nil
	}

	for i := 2; i < n.maxAttempts+2; i++ {
		suffix := "-" + strconv.Itoa(i)
		candidate := truncate(base, n.maxLen-len(suffix)) + suffix
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q after %d attempts", domain.ErrSlugCollisionUnresolved, base, n.maxAttempts)
}
