package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// LikeRepository tracks membership in a post's liker set. The like counter
// itself lives on the post document.
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(postID string, userID uint) error
	HasUserLikedPost(postID string, userID uint) (bool, error)
	GetLikedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	if err := r.db.Create(like).Error; err != nil {
		return apperrors.Unavailable(err, "failed to create like")
	}
	return nil
}

// DeleteLike deletes a like from PostgreSQL
func (r *PostgresLikeRepository) DeleteLike(postID string, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to delete like")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("like not found")
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Unavailable(err, "failed to check like membership")
	}
	return count > 0, nil
}

// GetLikedPostIDs returns which of the given posts the user has liked.
func (r *PostgresLikeRepository) GetLikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	var likes []models.Like
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&likes).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load liked posts")
	}
	for _, l := range likes {
		liked[l.PostID] = true
	}
	return liked, nil
}
