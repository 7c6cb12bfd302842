package models

import "gorm.io/gorm"

// Like represents a user's membership in a post's liker set. The post's
// like counter lives on the post document and is incremented atomically;
// this row only records who liked what.
type Like struct {
	gorm.Model
	PostID string `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"` // Mongo post ObjectID hex
	UserID uint   `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
}
