package models

import "time"

// VisibleClause is the SQL predicate every owner-facing read of a
// soft-deletable table must carry.
const VisibleClause = "deleted_at IS NULL"

type SoftDeletable interface {
	Deleted() *time.Time
}

// IsVisible reports whether e exists and has not been soft-deleted.
func IsVisible(e SoftDeletable) bool {
	switch v := e.(type) {
	case nil:
		return false
	case *Card:
		if v == nil {
			return false
		}
	case *Document:
		if v == nil {
			return false
		}
	}
	return e.Deleted() == nil
}
