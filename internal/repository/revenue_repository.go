package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	s "github.com/iliyamo/invoice-dashboard/internal/schema"
)

// RevenueRepo reads the externally maintained monthly revenue snapshot.
type RevenueRepo struct {
	db *sql.DB
}

func NewRevenueRepo(db *sql.DB) *RevenueRepo { return &RevenueRepo{db: db} }

var qRevenue = fmt.Sprintf("SELECT %s FROM %s", s.Names(s.Revenue.Month, s.Revenue.Revenue), s.Revenue.TableName())

// List returns every revenue row as stored.
func (r *RevenueRepo) List(ctx context.Context) ([]model.Revenue, error) {
	rows, err := r.db.QueryContext(ctx, qRevenue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Revenue, 0, 12)
	for rows.Next() {
		var rv model.Revenue
		if err := rows.Scan(&rv.Month, &rv.Revenue); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
