package models

import "time"

// SavedPost represents a user's membership in a post's saver set. The
// post's save counter lives on the post document and is incremented
// atomically; this row only records who bookmarked what.
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_save"` // Mongo post ObjectID hex
	CreatedAt time.Time `json:"created_at"`
}
