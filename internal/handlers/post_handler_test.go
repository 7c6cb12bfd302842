package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/mediastore"
)

type authorPostRepo struct {
	repositories.PostRepository

	posts            []models.Post
	lastVisibilities []string
}

func (f *authorPostRepo) GetPostsByAuthor(ctx context.Context, authorID uint, visibilities []string, skip, limit int64) ([]models.Post, error) {
	f.lastVisibilities = visibilities
	if visibilities == nil {
		return f.posts, nil
	}
	allowed := make(map[string]bool, len(visibilities))
	for _, v := range visibilities {
		allowed[v] = true
	}
	var out []models.Post
	for _, p := range f.posts {
		if p.Status == models.StatusReady && allowed[p.Visibility] {
			out = append(out, p)
		}
	}
	return out, nil
}

type authorFollowRepo struct {
	repositories.FollowRepository

	following bool
}

func (f *authorFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	return f.following, nil
}

func authorPosts() []models.Post {
	return []models.Post{
		{ID: primitive.NewObjectID(), AuthorID: 7, Caption: "public post", Status: models.StatusReady, Visibility: models.VisibilityPublic},
		{ID: primitive.NewObjectID(), AuthorID: 7, Caption: "followers post", Status: models.StatusReady, Visibility: models.VisibilityFollowers},
		{ID: primitive.NewObjectID(), AuthorID: 7, Caption: "secret draft", Status: models.StatusDraft, Visibility: models.VisibilityPrivate},
		{ID: primitive.NewObjectID(), AuthorID: 7, Caption: "queued post", Status: models.StatusScheduled, Visibility: models.VisibilityPublic},
	}
}

func getPostsAs(t *testing.T, userID uint, postRepo *authorPostRepo, followRepo *authorFollowRepo) []models.Post {
	t.Helper()
	h := NewPostHandler(postRepo, followRepo, nil, mediastore.NoopStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/posts?author_id=7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", userID)

	require.NoError(t, h.GetPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	return posts
}

func TestGetPostsStrangerSeesOnlyReadyPublic(t *testing.T) {
	postRepo := &authorPostRepo{posts: authorPosts()}
	posts := getPostsAs(t, 42, postRepo, &authorFollowRepo{})

	assert.Equal(t, []string{models.VisibilityPublic}, postRepo.lastVisibilities)
	require.Len(t, posts, 1)
	assert.Equal(t, "public post", posts[0].Caption)
}

func TestGetPostsFollowerSeesFollowersPosts(t *testing.T) {
	postRepo := &authorPostRepo{posts: authorPosts()}
	posts := getPostsAs(t, 42, postRepo, &authorFollowRepo{following: true})

	assert.Equal(t, []string{models.VisibilityPublic, models.VisibilityFollowers}, postRepo.lastVisibilities)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, models.StatusReady, p.Status)
	}
}

func TestGetPostsOwnerSeesEverything(t *testing.T) {
	postRepo := &authorPostRepo{posts: authorPosts()}
	posts := getPostsAs(t, 7, postRepo, &authorFollowRepo{})

	assert.Nil(t, postRepo.lastVisibilities)
	assert.Len(t, posts, 4)
}
