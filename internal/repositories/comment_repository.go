package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(commentID uint) (*models.Comment, error)
	GetCommentsByPostID(postID string, page, limit int) ([]models.Comment, error)
	DeleteComment(commentID, userID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return apperrors.Unavailable(err, "failed to create comment")
	}
	return nil
}

// GetCommentByID retrieves one comment by its ID.
func (r *PostgresCommentRepository) GetCommentByID(commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load comment")
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves comments for a post, newest first.
func (r *PostgresCommentRepository) GetCommentsByPostID(postID string, page, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	offset := (page - 1) * limit
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load comments")
	}
	return comments, nil
}

// DeleteComment deletes a comment owned by the given user.
func (r *PostgresCommentRepository) DeleteComment(commentID, userID uint) error {
	res := r.db.Where("id = ? AND user_id = ?", commentID, userID).Delete(&models.Comment{})
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to delete comment")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("comment not found")
	}
	return nil
}
