package repositories

import (
	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// FollowRepository is the user-directory collaborator: following, follower
// and blocked sets, backed by PostgreSQL.
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowingIDs(userID uint) ([]uint, error)
	GetFollowerIDs(userID uint) ([]uint, error)

	CreateBlock(block *models.Block) error
	DeleteBlock(blockerID, blockedID uint) error
	GetBlockedIDs(userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	if err := r.db.Create(follow).Error; err != nil {
		return apperrors.Unavailable(err, "failed to create follow")
	}
	return nil
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to delete follow")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("follow relationship not found")
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to check follow")
	}
	return count > 0, nil
}

// GetFollowingIDs returns the IDs of every user the given user follows.
func (r *PostgresFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load following set")
	}
	return ids, nil
}

// GetFollowerIDs returns the IDs of every user following the given user.
func (r *PostgresFollowRepository) GetFollowerIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load follower set")
	}
	return ids, nil
}

func (r *PostgresFollowRepository) CreateBlock(block *models.Block) error {
	if err := r.db.Create(block).Error; err != nil {
		return apperrors.Unavailable(err, "failed to create block")
	}
	return nil
}

func (r *PostgresFollowRepository) DeleteBlock(blockerID, blockedID uint) error {
	res := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Delete(&models.Block{})
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to delete block")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("block not found")
	}
	return nil
}

// GetBlockedIDs returns the IDs of every user the given user has blocked.
func (r *PostgresFollowRepository) GetBlockedIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load blocked set")
	}
	return ids, nil
}
