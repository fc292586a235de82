// Package models contains data structures for the application's domain models.
package models

import "time"

// TagCategory groups tags into a fixed set of sections.
type TagCategory string

const (
	TagCategoryProgramming TagCategory = "programming"
	TagCategoryDesign      TagCategory = "design"
	TagCategoryCareer      TagCategory = "career"
	TagCategoryLife        TagCategory = "life"
	TagCategoryOther       TagCategory = "other"
)

// ValidTagCategory reports whether c is a known category value.
func ValidTagCategory(c TagCategory) bool {
	switch c {
	case TagCategoryProgramming, TagCategoryDesign, TagCategoryCareer, TagCategoryLife, TagCategoryOther:
		return true
	}
	return false
}

// Tag categorizes posts. Posts reference tags by identity and never embed
// tag data.
type Tag struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"size:48;uniqueIndex;not null" json:"name"`
	Slug      string      `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Category  TagCategory `gorm:"type:varchar(16);not null;default:'other'" json:"category"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
