package store

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListFollows returns the outgoing edges of userID. A non-empty search
// keeps only edges where either username contains it, case-insensitively.
func (s *Store) ListFollows(ctx context.Context, userID uint, search string) ([]models.Follow, error) {
	q := s.db.WithContext(ctx).
		Preload("User").
		Preload("Following").
		Where("follows.user_id = ?", userID).
		Order("follows.id")

	if search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.
			Joins("JOIN users AS fu ON fu.id = follows.user_id").
			Joins("JOIN users AS ft ON ft.id = follows.following_id").
			Where(`(LOWER(ft.username) LIKE ? ESCAPE '\' OR LOWER(fu.username) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var follows []models.Follow
	if err := q.Find(&follows).Error; err != nil {
		return nil, translate(err)
	}
	return follows, nil
}

// FollowExists reports whether userID already follows followingID.
func (s *Store) FollowExists(ctx context.Context, userID, followingID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CreateFollow inserts the edge. The unique index on (user_id,
// following_id) makes concurrent duplicates fail with ErrDuplicate.
func (s *Store) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error; err != nil {
		return translate(err)
	}
	return s.db.WithContext(ctx).Preload("User").Preload("Following").First(follow, follow.ID).Error
}
