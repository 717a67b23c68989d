package naming_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/pkordes/fanblog/internal/domain"
	"github.com/pkordes/fanblog/internal/naming"
)

// ---- Validate: success -----------------------------------------------------

func TestValidate_OK(t *testing.T) {
	got, err := naming.Validate("Rust", []string{"asp.net", "c#"}, domain.TypeTag)

	require.NoError(t, err)
	assert.Equal(t, "Rust", got)
}

func TestValidate_ReturnsTitleUnchanged(t *testing.T) {
	got, err := naming.Validate("  Go Tips  ", nil, domain.TypeCategory)

	require.NoError(t, err)
	assert.Equal(t, "  Go Tips  ", got)
}

func TestValidate_MaxLength(t *testing.T) {
	title := strings.Repeat("a", domain.TitleSlugMaxLen)

	_, err := naming.Validate(title, nil, domain.TypeCategory)

	require.NoError(t, err)
}

func TestValidate_LengthCountsCharactersNotBytes(t *testing.T) {
	// 250 two-byte runes is 500 bytes but still 250 characters.
	title := strings.Repeat("é", domain.TitleSlugMaxLen)

	_, err := naming.Validate(title, nil, domain.TypeTag)

	require.NoError(t, err)
}

func TestValidate_SameTitleOtherTypeIsFine(t *testing.T) {
	// Callers pass only titles of the type being validated, so a category
	// named "Go" does not block a tag named "Go".
	categories := []string{"Go"}
	tags := []string{}

	_, err := naming.Validate("Go", tags, domain.TypeTag)
	require.NoError(t, err)

	_, err = naming.Validate("Go", categories, domain.TypeCategory)
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
}

// ---- Validate: failures ----------------------------------------------------

func TestValidate_Duplicate_CaseInsensitive(t *testing.T) {
	_, err := naming.Validate("technology", []string{"Technology"}, domain.TypeCategory)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var titleErr *domain.TitleError
	require.True(t, errors.As(err, &titleErr))
	assert.Equal(t, "Category 'technology' is not available, please choose a different one.", titleErr.Message)
}

func TestValidate_Duplicate_MessageKeepsCandidateCasing(t *testing.T) {
	_, err := naming.Validate("ASP.NET", []string{"asp.net", "c#"}, domain.TypeTag)

	var titleErr *domain.TitleError
	require.True(t, errors.As(err, &titleErr))
	assert.Contains(t, titleErr.Message, "Tag")
	assert.Contains(t, titleErr.Message, "'ASP.NET'")
	assert.Equal(t, domain.TypeTag, titleErr.Type)
	assert.Equal(t, "ASP.NET", titleErr.Title)
}

func TestValidate_Duplicate_IgnoresSurroundingWhitespace(t *testing.T) {
	_, err := naming.Validate("Technology ", []string{"Technology"}, domain.TypeCategory)

	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
}

func TestValidate_Duplicate_CaseFolding(t *testing.T) {
	// Full case folding: "STRASSE" and "straße" are the same title.
	_, err := naming.Validate("STRASSE", []string{"straße"}, domain.TypeTag)

	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
}

func TestValidate_Duplicate_UnicodeNormalization(t *testing.T) {
	// Precomposed "é" versus "e" + combining acute accent.
	_, err := naming.Validate("Cafe\u0301", []string{"CAFÉ"}, domain.TypeCategory)

	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
}

func TestValidate_Empty(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		existing []string
	}{
		{"empty", "", nil},
		{"spaces", "   ", nil},
		{"tabs and newlines", "\t\n", nil},
		{"empty with existing", "", []string{"", "Technology"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := naming.Validate(tt.title, tt.existing, domain.TypeCategory)

			assert.ErrorIs(t, err, domain.ErrEmptyTitle)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.NotErrorIs(t, err, domain.ErrDuplicateTitle)
		})
	}
}

func TestValidate_TooLong(t *testing.T) {
	title := strings.Repeat("a", domain.TitleSlugMaxLen+1)

	_, err := naming.Validate(title, nil, domain.TypeTag)

	assert.ErrorIs(t, err, domain.ErrTitleTooLong)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var titleErr *domain.TitleError
	require.True(t, errors.As(err, &titleErr))
	assert.Equal(t, "Tag title must be between 1 and 250 characters.", titleErr.Message)
}

func TestValidate_TooLongCheckedBeforeDuplicate(t *testing.T) {
	title := strings.Repeat("a", domain.TitleSlugMaxLen+1)

	_, err := naming.Validate(title, []string{title}, domain.TypeTag)

	assert.ErrorIs(t, err, domain.ErrTitleTooLong)
}

// ---- Locale ----------------------------------------------------------------

func TestValidate_TurkishDotlessI(t *testing.T) {
	tr := naming.New(naming.WithLanguage(language.Turkish))

	_, err := tr.Validate("ISTANBUL", []string{"ıstanbul"}, domain.TypeTag)
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle, "tr lowercases I to ı")

	_, err = tr.Validate("İzmir", []string{"izmir"}, domain.TypeTag)
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle, "tr lowercases İ to i")
}

func TestValidate_NeutralLanguageKeepsDotlessIDistinct(t *testing.T) {
	_, err := naming.Validate("ISTANBUL", []string{"ıstanbul"}, domain.TypeTag)

	assert.NoError(t, err)
}

func TestNamer_Available(t *testing.T) {
	n := naming.New()

	assert.True(t, n.Available("Rust", []string{"Go"}, domain.TypeTag))
	assert.False(t, n.Available("go", []string{"Go"}, domain.TypeTag))
	assert.False(t, n.Available("", nil, domain.TypeTag))
}

func TestNamer_IndexOf(t *testing.T) {
	n := naming.New()
	titles := []string{"asp.net", "c#", "Go"}

	assert.Equal(t, 1, n.IndexOf("C#", titles))
	assert.Equal(t, 2, n.IndexOf("  go ", titles))
	assert.Equal(t, -1, n.IndexOf("rust", titles))
	assert.Equal(t, -1, n.IndexOf("go", nil))
}
