// Package models holds the gorm entities persisted by the store.
package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:150;uniqueIndex;not null"`
	Email    string `gorm:"size:254"`
	PWHash   string `gorm:"not null"`
	Posts    []Post `gorm:"foreignKey:AuthorID"`
}

// Group is created out-of-band and never mutated through the API.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:50;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
	Image    *string   `gorm:"size:255"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID"`
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"foreignKey:GroupID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

// OwnerID returns the author of the post.
func (p *Post) OwnerID() uint { return p.AuthorID }

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID"`
	PostID   uint      `gorm:"not null;index"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"autoCreateTime;index"`
}

// OwnerID returns the author of the comment.
func (c *Comment) OwnerID() uint { return c.AuthorID }

// Follow is a directed edge: User follows Following. The pair is unique.
type Follow struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_follow_pair"`
	User        User `gorm:"foreignKey:UserID"`
	FollowingID uint `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	Following   User `gorm:"foreignKey:FollowingID"`
}

// AuthToken is a long-lived API key, one per user.
type AuthToken struct {
	Key     string    `gorm:"primaryKey;size:40"`
	UserID  uint      `gorm:"not null;uniqueIndex"`
	User    User      `gorm:"foreignKey:UserID"`
	Created time.Time `gorm:"autoCreateTime"`
}
