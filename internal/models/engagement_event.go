package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engagement event types
const (
	EventView          = "view"
	EventLike          = "like"
	EventUnlike        = "unlike"
	EventComment       = "comment"
	EventUncomment     = "uncomment"
	EventShare         = "share"
	EventSave          = "save"
	EventUnsave        = "unsave"
	EventVideo25       = "video_25"
	EventVideo50       = "video_50"
	EventVideo75       = "video_75"
	EventVideoComplete = "video_complete"
)

// EngagementEvent is one append-only engagement fact stored in MongoDB.
// Events are never mutated or deleted; they back analytics aggregation and
// form the audit trail from which counters could be rebuilt.
type EngagementEvent struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	EventType string             `json:"event_type" bson:"event_type"`
	Metadata  bson.M             `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
