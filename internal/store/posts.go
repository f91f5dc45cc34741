package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

// Page is a limit/offset window over a list.
type Page struct {
	Limit  int
	Offset int
}

// ListPosts returns posts in id order together with the total number of
// posts. A nil page returns everything.
func (s *Store) ListPosts(ctx context.Context, page *Page) ([]models.Post, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	q := db.Preload("Author").Order("id")
	if page != nil {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, translate(err)
	}
	return posts, total, nil
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// CreatePost inserts post; AuthorID must already be set.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return translate(err)
	}
	return s.db.WithContext(ctx).Preload("Author").First(post, post.ID).Error
}

// SavePost writes the client-editable columns of post.
func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Model(post).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"image":    post.Image,
			"group_id": post.GroupID,
		}).Error
	return translate(err)
}

// DeletePost removes post and its comments.
func (s *Store) DeletePost(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	return translate(err)
}
