// Package repository implements the data access layer for the application.
package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// memberSet models a join table with a composite unique index as a set of
// (a, b) pairs. Likes, bookmarks and follows are all instances of it. Adding
// is a single upsert, so concurrent adds of the same pair collapse into one
// row instead of erroring.
type memberSet struct {
	table string
	colA  string
	colB  string
}

var (
	postLikes    = memberSet{table: "post_likes", colA: "user_id", colB: "post_id"}
	postMarks    = memberSet{table: "post_bookmarks", colA: "user_id", colB: "post_id"}
	commentLikes = memberSet{table: "comment_likes", colA: "user_id", colB: "comment_id"}
	followEdges  = memberSet{table: "follows", colA: "follower_id", colB: "followee_id"}
)

// add inserts the pair if absent. Returns true when this call created the
// row. CURRENT_TIMESTAMP rather than NOW() so the statement runs on both
// PostgreSQL and SQLite.
func (s memberSet) add(db *gorm.DB, a, b uint) (bool, error) {
	res := db.Exec(fmt.Sprintf(
		`INSERT INTO %s (%s, %s, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (%s, %s) DO NOTHING`,
		s.table, s.colA, s.colB, s.colA, s.colB,
	), a, b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// remove deletes the pair if present. Returns true when a row was deleted.
func (s memberSet) remove(db *gorm.DB, a, b uint) (bool, error) {
	res := db.Exec(fmt.Sprintf(
		`DELETE FROM %s WHERE %s = ? AND %s = ?`,
		s.table, s.colA, s.colB,
	), a, b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// toggle flips membership of the pair and returns the resulting state. The
// add is attempted first: when the upsert inserts, the pair is now a member;
// when it hits the unique index, the pair was already a member and is removed.
func (s memberSet) toggle(db *gorm.DB, a, b uint) (bool, error) {
	added, err := s.add(db, a, b)
	if err != nil {
		return false, err
	}
	if added {
		return true, nil
	}
	if _, err := s.remove(db, a, b); err != nil {
		return false, err
	}
	return false, nil
}

// contains reports whether the pair is a member.
func (s memberSet) contains(db *gorm.DB, a, b uint) (bool, error) {
	var count int64
	err := db.Table(s.table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", s.colA, s.colB), a, b).
		Count(&count).Error
	return count > 0, err
}

// countBy returns the number of pairs whose col equals id.
func (s memberSet) countBy(db *gorm.DB, col string, id uint) (int64, error) {
	var count int64
	err := db.Table(s.table).
		Where(fmt.Sprintf("%s = ?", col), id).
		Count(&count).Error
	return count, err
}
