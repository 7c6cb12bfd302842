package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMediaUnifiedShape(t *testing.T) {
	req := CreatePostRequest{
		Media: []MediaInput{
			{URL: "https://cdn.example.com/a.jpg", Kind: MediaKindImage},
			{URL: "https://cdn.example.com/b.mp4", Kind: MediaKindVideo, Duration: 30},
		},
	}

	media := req.NormalizeMedia()
	assert.Len(t, media, 2)
	assert.Equal(t, MediaKindImage, media[0].Kind)
	assert.Equal(t, MediaKindVideo, media[1].Kind)
	assert.Equal(t, 30.0, media[1].Duration)
}

func TestNormalizeMediaLegacyShape(t *testing.T) {
	req := CreatePostRequest{
		ImageURLs: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		VideoURLs: []string{"https://cdn.example.com/c.mp4"},
	}

	media := req.NormalizeMedia()
	assert.Len(t, media, 3)
	assert.Equal(t, MediaKindImage, media[0].Kind)
	assert.Equal(t, MediaKindImage, media[1].Kind)
	assert.Equal(t, MediaKindVideo, media[2].Kind)
}

func TestNormalizeMediaUnifiedWinsOverLegacy(t *testing.T) {
	req := CreatePostRequest{
		Media:     []MediaInput{{URL: "https://cdn.example.com/a.jpg", Kind: MediaKindImage}},
		ImageURLs: []string{"https://cdn.example.com/b.jpg"},
	}

	media := req.NormalizeMedia()
	assert.Len(t, media, 1)
	assert.Equal(t, "https://cdn.example.com/a.jpg", media[0].URL)
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("Sunset run #Fitness #running #fitness with #café_vibes")
	assert.Equal(t, []string{"fitness", "running", "café_vibes"}, tags)
}

func TestExtractHashtagsNone(t *testing.T) {
	assert.Nil(t, ExtractHashtags("no tags here"))
	assert.Nil(t, ExtractHashtags(""))
}

func TestDeriveIsReel(t *testing.T) {
	portrait := []Media{{URL: "v.mp4", Kind: MediaKindVideo, Width: 1080, Height: 1920}}
	landscape := []Media{{URL: "v.mp4", Kind: MediaKindVideo, Width: 1920, Height: 1080}}
	shortNoDims := []Media{{URL: "v.mp4", Kind: MediaKindVideo, Duration: 45}}
	longNoDims := []Media{{URL: "v.mp4", Kind: MediaKindVideo, Duration: 180}}
	image := []Media{{URL: "a.jpg", Kind: MediaKindImage}}
	carousel := []Media{
		{URL: "v.mp4", Kind: MediaKindVideo, Width: 1080, Height: 1920},
		{URL: "a.jpg", Kind: MediaKindImage},
	}

	assert.True(t, DeriveIsReel(portrait))
	assert.False(t, DeriveIsReel(landscape))
	assert.True(t, DeriveIsReel(shortNoDims))
	assert.False(t, DeriveIsReel(longNoDims))
	assert.False(t, DeriveIsReel(image))
	assert.False(t, DeriveIsReel(carousel))
	assert.False(t, DeriveIsReel(nil))
}

func TestIsCounterField(t *testing.T) {
	assert.True(t, IsCounterField(CounterLikes))
	assert.True(t, IsCounterField(CounterCompletion))
	assert.False(t, IsCounterField("engagement_score"))
	assert.False(t, IsCounterField(""))
}

func TestAvgCompletionRate(t *testing.T) {
	p := Post{Counters: Counters{ViewCount: 4, CompletionSum: 3}}
	assert.InDelta(t, 0.75, p.AvgCompletionRate(), 1e-9)

	empty := Post{}
	assert.Zero(t, empty.AvgCompletionRate())
}
