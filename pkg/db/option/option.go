package option

import (
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/pkg/db/pagination"
)

// Option mutates a gorm query before execution.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(q *gorm.DB) *gorm.DB { return f(q) }

// ApplyPagination resolves a cursor token into a keyset predicate and limit.
// Queries using it must order by (created_at desc, id desc). One extra row is
// fetched so callers can detect whether more pages exist.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(q *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err == nil {
				q = q.Where(
					"(created_at < ?) OR (created_at = ? AND id < ?)",
					cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
				)
			}
		}
		if page.PageSize > 0 {
			q = q.Limit(page.PageSize + 1)
		}
		return q
	})
}
