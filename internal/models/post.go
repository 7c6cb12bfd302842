package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post visibility levels
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Post lifecycle states. scheduled posts are promoted to ready by the
// background publisher; processing resolves externally to ready or failed.
const (
	StatusDraft      = "draft"
	StatusProcessing = "processing"
	StatusScheduled  = "scheduled"
	StatusReady      = "ready"
	StatusFailed     = "failed"
	StatusFlagged    = "flagged"
)

// Media kinds
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is one item of a post's media list, already uploaded to the
// external media store.
type Media struct {
	URL          string  `json:"url" bson:"url"`
	Kind         string  `json:"kind" bson:"kind"`
	Duration     float64 `json:"duration,omitempty" bson:"duration,omitempty"` // seconds, video only
	Width        int     `json:"width,omitempty" bson:"width,omitempty"`
	Height       int     `json:"height,omitempty" bson:"height,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
}

// Counters holds the per-post engagement counters. They are mutated only
// through atomic $inc updates, never read-modify-write.
type Counters struct {
	LikeCount     int64   `json:"like_count" bson:"like_count"`
	CommentCount  int64   `json:"comment_count" bson:"comment_count"`
	ShareCount    int64   `json:"share_count" bson:"share_count"`
	SaveCount     int64   `json:"save_count" bson:"save_count"`
	ViewCount     int64   `json:"view_count" bson:"view_count"`
	WatchTimeSum  float64 `json:"watch_time_sum" bson:"watch_time_sum"`
	CompletionSum float64 `json:"completion_sum" bson:"completion_sum"`
}

// Counter field names as stored under the counters subdocument. Increment
// requests are validated against this closed set.
const (
	CounterLikes      = "like_count"
	CounterComments   = "comment_count"
	CounterShares     = "share_count"
	CounterSaves      = "save_count"
	CounterViews      = "view_count"
	CounterWatchTime  = "watch_time_sum"
	CounterCompletion = "completion_sum"
)

var counterFields = map[string]bool{
	CounterLikes:      true,
	CounterComments:   true,
	CounterShares:     true,
	CounterSaves:      true,
	CounterViews:      true,
	CounterWatchTime:  true,
	CounterCompletion: true,
}

// IsCounterField reports whether field names a known post counter.
func IsCounterField(field string) bool {
	return counterFields[field]
}

// Post represents a post stored in MongoDB. engagement_score is derived
// state, recomputed only by the scoring job; it is always safe to rebuild
// from the counters and created_at.
type Post struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID        uint               `json:"author_id" bson:"author_id"`
	Caption         string             `json:"caption" bson:"caption"`
	Media           []Media            `json:"media" bson:"media"`
	Visibility      string             `json:"visibility" bson:"visibility"`
	Status          string             `json:"status" bson:"status"`
	ScheduledFor    *time.Time         `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	Counters        Counters           `json:"counters" bson:"counters"`
	EngagementScore float64            `json:"engagement_score" bson:"engagement_score"`
	IsReel          bool               `json:"is_reel" bson:"is_reel"`
	Hashtags        []string           `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	IsDeleted       bool               `json:"-" bson:"is_deleted"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// AvgCompletionRate is the mean video completion fraction across views.
// Computed, never persisted.
func (p *Post) AvgCompletionRate() float64 {
	if p.Counters.ViewCount == 0 {
		return 0
	}
	return p.Counters.CompletionSum / float64(p.Counters.ViewCount)
}

// AllMediaURLs returns every media URL of the post, thumbnails excluded.
func (p *Post) AllMediaURLs() []string {
	urls := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		urls = append(urls, m.URL)
	}
	return urls
}

// MediaInput is one media item of the unified create payload.
type MediaInput struct {
	URL          string  `json:"url" validate:"required,url"`
	Kind         string  `json:"kind" validate:"required,oneof=image video"`
	Duration     float64 `json:"duration,omitempty" validate:"omitempty,min=0"`
	Width        int     `json:"width,omitempty" validate:"omitempty,min=0"`
	Height       int     `json:"height,omitempty" validate:"omitempty,min=0"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
}

// CreatePostRequest defines the request body for creating a new post.
// Clients send either the unified media list or the legacy image/video URL
// arrays; both shapes are normalized into media at the boundary.
type CreatePostRequest struct {
	Caption      string       `json:"caption" validate:"max=2200"`
	Media        []MediaInput `json:"media,omitempty" validate:"omitempty,max=10,dive"`
	ImageURLs    []string     `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs    []string     `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
	Visibility   string       `json:"visibility,omitempty" validate:"omitempty,oneof=public followers private"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`
	Draft        bool         `json:"draft,omitempty"`
}

// NormalizeMedia converts either payload shape into the canonical media
// list. The unified list wins when both are present.
func (r *CreatePostRequest) NormalizeMedia() []Media {
	if len(r.Media) > 0 {
		media := make([]Media, len(r.Media))
		for i, m := range r.Media {
			media[i] = Media{
				URL:          m.URL,
				Kind:         m.Kind,
				Duration:     m.Duration,
				Width:        m.Width,
				Height:       m.Height,
				ThumbnailURL: m.ThumbnailURL,
			}
		}
		return media
	}

	media := make([]Media, 0, len(r.ImageURLs)+len(r.VideoURLs))
	for _, u := range r.ImageURLs {
		media = append(media, Media{URL: u, Kind: MediaKindImage})
	}
	for _, u := range r.VideoURLs {
		media = append(media, Media{URL: u, Kind: MediaKindVideo})
	}
	return media
}

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags pulls lowercase hashtags out of caption text, deduplicated
// in order of first appearance.
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// DeriveIsReel reports whether the media list makes the post a reel: a
// single portrait video. Videos without dimensions count when they are 90
// seconds or shorter.
func DeriveIsReel(media []Media) bool {
	if len(media) != 1 || media[0].Kind != MediaKindVideo {
		return false
	}
	m := media[0]
	if m.Width > 0 && m.Height > 0 {
		return m.Height > m.Width
	}
	return m.Duration > 0 && m.Duration <= 90
}
