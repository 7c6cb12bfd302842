package repositories

import (
	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// SavedPostRepository tracks membership in a user's bookmark set. The save
// counter itself lives on the post document.
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(userID uint, postID string) error
	IsPostSaved(userID uint, postID string) (bool, error)
	GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository for PostgreSQL
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new PostgresSavedPostRepository
func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost bookmarks a post for a user
func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	if err := r.db.Create(savedPost).Error; err != nil {
		return apperrors.Unavailable(err, "failed to save post")
	}
	return nil
}

// UnsavePost removes a bookmark
func (r *PostgresSavedPostRepository) UnsavePost(userID uint, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to unsave post")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("saved post not found")
	}
	return nil
}

// IsPostSaved checks if a user has bookmarked a specific post
func (r *PostgresSavedPostRepository) IsPostSaved(userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedPost{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to check bookmark membership")
	}
	return count > 0, nil
}

// GetSavedPostIDs returns which of the given posts the user has bookmarked.
func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	saved := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return saved, nil
	}

	var rows []models.SavedPost
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load saved posts")
	}
	for _, s := range rows {
		saved[s.PostID] = true
	}
	return saved, nil
}
