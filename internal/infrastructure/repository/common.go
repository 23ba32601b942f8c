package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// findOne runs query.First and maps a missing row to (nil, nil)
func findOne[T any](query *gorm.DB) (*T, error) {
	var out T
	result := query.First(&out)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &out, nil
}

// forUpdate adds SELECT ... FOR UPDATE; it must run inside a transaction
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// escapeLike escapes LIKE wildcards so value matches literally
func escapeLike(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
