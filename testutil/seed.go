package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/fanblog/internal/domain"
	"github.com/pkordes/fanblog/internal/repo"
)

// Seed data shared by integration tests.
const (
	PostSlug  = "test-post"
	CatTitle  = "Technology"
	CatSlug   = "tech"
	Tag1Title = "asp.net"
	Tag2Title = "c#"
	Tag1Slug  = "aspnet"
	Tag2Slug  = "cs"
)

// Fixture holds the rows created by the seed helpers.
type Fixture struct {
	Category domain.Taxonomy
	Tag1     domain.Taxonomy
	Tag2     domain.Taxonomy
	Posts    []domain.Post
}

// SeedTaxonomies inserts one category and two tags.
func SeedTaxonomies(t *testing.T, taxonomies repo.TaxonomyRepo) Fixture {
	t.Helper()
	ctx := context.Background()

	var f Fixture
	var err error
	f.Category, err = taxonomies.Create(ctx, domain.Taxonomy{Type: domain.TypeCategory, Title: CatTitle, Slug: CatSlug})
	require.NoError(t, err, "seed category")
	f.Tag1, err = taxonomies.Create(ctx, domain.Taxonomy{Type: domain.TypeTag, Title: Tag1Title, Slug: Tag1Slug})
	require.NoError(t, err, "seed tag1")
	f.Tag2, err = taxonomies.Create(ctx, domain.Taxonomy{Type: domain.TypeTag, Title: Tag2Title, Slug: Tag2Slug})
	require.NoError(t, err, "seed tag2")
	return f
}

// SeedTestPost seeds one published post in the category, tagged with both tags.
func SeedTestPost(t *testing.T, taxonomies repo.TaxonomyRepo, posts repo.PostRepo) Fixture {
	t.Helper()
	ctx := context.Background()

	f := SeedTaxonomies(t, taxonomies)
	post, err := posts.Create(ctx, domain.Post{
		Title:      "A published post",
		Slug:       PostSlug,
		Body:       "A post body.",
		Status:     domain.StatusPublished,
		CategoryID: &f.Category.ID,
	})
	require.NoError(t, err, "seed post")

	for _, tag := range []domain.Taxonomy{f.Tag1, f.Tag2} {
		require.NoError(t, taxonomies.AddToPost(ctx, post.ID, tag.ID), "link tag %s", tag.Slug)
	}
	post.Tags = []domain.Taxonomy{f.Tag1, f.Tag2}
	f.Posts = []domain.Post{post}
	return f
}

// SeedTestPosts seeds n posts in the category. Odd-numbered posts are
// published and tagged with tag1, even-numbered posts are drafts tagged
// with tag2.
func SeedTestPosts(t *testing.T, taxonomies repo.TaxonomyRepo, posts repo.PostRepo, n int) Fixture {
	t.Helper()
	require.Positive(t, n, "SeedTestPosts needs at least one post")
	ctx := context.Background()

	f := SeedTaxonomies(t, taxonomies)
	for i := 1; i <= n; i++ {
		status, tag := domain.StatusPublished, f.Tag1
		if i%2 == 0 {
			status, tag = domain.StatusDraft, f.Tag2
		}

		post, err := posts.Create(ctx, domain.Post{
			Title:      fmt.Sprintf("Test Post #%d", i),
			Slug:       fmt.Sprintf("%s-%d", PostSlug, i),
			Body:       fmt.Sprintf("A post body #%d.", i),
			Status:     status,
			CategoryID: &f.Category.ID,
		})
		require.NoError(t, err, "seed post %d", i)
		require.NoError(t, taxonomies.AddToPost(ctx, post.ID, tag.ID), "link post %d", i)

		post.Tags = []domain.Taxonomy{tag}
		f.Posts = append(f.Posts, post)
	}
	return f
}
