// internal/services/blog_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

func TestBlogPostLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewBlogService(db, nil)
	ctx := context.Background()

	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	reader := createProfile(t, db, "reader@example.com", models.UserRoleUser)

	_, err := svc.CreatePost(ctx, identityOf(reader), &CreatePostRequest{Title: "Hi", Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreatePost(ctx, identityOf(admin), &CreatePostRequest{Title: "No content"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	draft, err := svc.CreatePost(ctx, identityOf(admin), &CreatePostRequest{
		Title:   "Color grading basics",
		Content: "Start with exposure.",
	})
	require.NoError(t, err)
	assert.False(t, draft.IsPublished)
	assert.Nil(t, draft.PublishedAt)
	assert.Contains(t, draft.Slug, "color-grading-basics-")

	_, err = svc.GetPostBySlug(ctx, identityOf(reader), draft.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	posts, total, err := svc.ListPosts(ctx, identityOf(reader), utils.DefaultPagination())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	published, err := svc.TogglePostStatus(ctx, identityOf(admin), draft.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	unpublished, err := svc.TogglePostStatus(ctx, identityOf(admin), draft.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished)

	title := "Color grading, part one"
	publish := true
	updated, err := svc.UpdatePost(ctx, identityOf(admin), draft.ID, &UpdatePostRequest{Title: &title, IsPublished: &publish})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, draft.Slug, updated.Slug)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, firstPublished.Equal(*updated.PublishedAt))

	post, err := svc.GetPostBySlug(ctx, identityOf(reader), draft.Slug)
	require.NoError(t, err)
	require.NotNil(t, post.Author)
	assert.Empty(t, post.Author.Email)

	posts, total, err = svc.ListPosts(ctx, Identity{}, utils.DefaultPagination())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.EqualValues(t, 1, posts[0].ViewCount)

	require.NoError(t, svc.DeletePost(ctx, identityOf(admin), draft.ID))
	_, err = svc.GetPostBySlug(ctx, identityOf(admin), draft.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeletePost(ctx, identityOf(admin), uuid.New()), ErrNotFound)
}
