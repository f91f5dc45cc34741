package store

import (
	"context"

	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

// ListComments returns the comments of one post.
func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

// GetComment fetches a comment only if it belongs to postID.
func (s *Store) GetComment(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		First(&comment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// CreateComment inserts comment; AuthorID and PostID must already be set.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return translate(err)
	}
	return s.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error
}

func (s *Store) SaveComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Model(comment).Update("text", comment.Text).Error)
}

func (s *Store) DeleteComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error)
}
