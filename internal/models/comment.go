package models

import "gorm.io/gorm"

// Comment represents a comment on a post (PostgreSQL). The post's comment
// counter lives on the post document.
type Comment struct {
	gorm.Model
	PostID  string `json:"post_id" gorm:"index"` // Mongo post ObjectID hex
	UserID  uint   `json:"user_id" gorm:"index"`
	Content string `json:"content" gorm:"type:text"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2200"`
}
