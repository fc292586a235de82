package repository

import (
	"context"

	"bloggr/internal/cache"
	"bloggr/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
// Each edge is one row, so follower and following views are two reads of the
// same data and cannot disagree.
type FollowRepository interface {
	SetFollowing(ctx context.Context, followerID, followeeID uint, follow bool) (bool, int64, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// SetFollowing puts the follow edge into the requested state and returns
// whether the call changed anything, plus the followee's follower count
// afterwards. Setting an edge to the state it is already in is a no-op, so
// repeated follows or unfollows never error and never over-apply.
func (r *followRepository) SetFollowing(ctx context.Context, followerID, followeeID uint, follow bool) (bool, int64, error) {
	var changed bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		if follow {
			changed, txErr = followEdges.add(tx, followerID, followeeID)
		} else {
			changed, txErr = followEdges.remove(tx, followerID, followeeID)
		}
		if txErr != nil {
			return txErr
		}
		count, txErr = followEdges.countBy(tx, "followee_id", followeeID)
		return txErr
	})
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}

	// Both profiles render follow counts.
	if changed {
		if user, userErr := NewUserRepository(r.db).GetByID(ctx, followeeID); userErr == nil {
			cache.InvalidateUser(ctx, user.Username)
		}
	}
	return changed, count, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	ok, err := followEdges.contains(r.db.WithContext(ctx), followerID, followeeID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return ok, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ? AND users.deleted_at IS NULL", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ? AND users.deleted_at IS NULL", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
