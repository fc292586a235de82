// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus represents the publication state of a post.
type PostStatus string

const (
	// PostStatusDraft is the initial state of an unpublished post.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished makes the post publicly readable.
	PostStatusPublished PostStatus = "published"
	// PostStatusArchived hides the post from listings but keeps it readable by its author.
	PostStatusArchived PostStatus = "archived"
	// PostStatusTrash marks the post for deletion.
	PostStatusTrash PostStatus = "trash"
)

// ValidPostStatus reports whether s is a known status value.
// The transition graph is intentionally unrestricted; any status may be set
// by an authorized update.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived, PostStatusTrash:
		return true
	}
	return false
}

// Post represents a blog post. Content is an opaque rich-text blob; the
// server never interprets it beyond word counting for read-time estimation.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:300;not null" json:"title"`
	Slug       string     `gorm:"size:320;uniqueIndex;not null" json:"slug"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CoverImage string     `json:"cover_image"`
	ReadTime   int        `json:"read_time"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user"`
	Status     PostStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	Tags       []Tag      `gorm:"many2many:post_tags" json:"tags"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// BookmarkCount is not persisted; computed at query time
	BookmarkCount int `gorm:"->" json:"bookmark_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// ReadCount is not persisted; computed at query time from the reads set
	ReadCount int `gorm:"->" json:"read_count"`
	// RegisteredReaderCount is the subset of reads attributable to signed-in users (computed)
	RegisteredReaderCount int `gorm:"->" json:"registered_readers_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Bookmarked indicates whether the current requesting user bookmarked this post (computed)
	Bookmarked bool           `gorm:"->" json:"bookmarked"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostLike is a membership row in a post's likes set.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_pair;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostBookmark is a membership row in a post's bookmarks set.
type PostBookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_bookmarks_pair" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_bookmarks_pair;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRead is a membership row in a post's reads set. Identity is the reader
// key of the identity that read the post (a "user:<id>" key or an anonymous
// token). UserID is set only for authenticated reads, so the registered
// readers set is by construction a subset of the reads set.
type PostRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_reads_pair;index" json:"post_id"`
	Identity  string    `gorm:"size:64;not null;uniqueIndex:idx_post_reads_pair" json:"identity"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
