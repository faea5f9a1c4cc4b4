package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// StationRepo reads the station master.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo returns a new StationRepo bound to the given database.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// List returns every station ordered by distance.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	return r.list(ctx, r.db)
}

// ListTx is List inside a transaction.
func (r *StationRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Station, error) {
	return r.list(ctx, tx)
}

func (r *StationRepo) list(ctx context.Context, q querier) ([]model.Station, error) {
	const sel = `SELECT id, name, distance, is_stop_express, is_stop_semi_express, is_stop_local
               FROM station_master ORDER BY distance, id`
	rows, err := q.QueryContext(ctx, sel)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.Station
	for rows.Next() {
		var s model.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Distance, &s.IsStopExpress, &s.IsStopSemiExpress, &s.IsStopLocal); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
