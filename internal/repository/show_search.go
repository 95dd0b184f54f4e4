package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ShowSearchQuery filters and pages the public show listing.
type ShowSearchQuery struct {
	Title      string // substring of the movie title, case-insensitive
	TimeFilter string // "upcoming" (default), "active" or "any"
	Page       int
	PageSize   int
}

// Search lists shows with their movie titles, soonest first, and the total
// number of matches for paging.
func (r *ShowRepo) Search(ctx context.Context, q ShowSearchQuery, now time.Time) ([]model.Show, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "s.end_time >= ?")
		args = append(args, now)
	default:
		where = append(where, "s.start_time >= ?")
		args = append(args, now)
	}
	if q.Title != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM shows s LEFT JOIN movies m ON m.id = s.movie_id WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT s.id, s.movie_id, s.room_id, COALESCE(m.title, ''), s.start_time, s.end_time
		FROM shows s
		LEFT JOIN movies m ON m.id = s.movie_id
		WHERE ` + cond + `
		ORDER BY s.start_time ASC, s.id ASC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, dataSQL, append(args, q.PageSize, (q.Page-1)*q.PageSize)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Show, 0, q.PageSize)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.MovieTitle, &s.StartTime, &s.EndTime); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
