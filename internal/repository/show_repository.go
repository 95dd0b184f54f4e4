package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// ShowRepo is the booking core's read-only view of the catalogue.
type ShowRepo struct {
    db *sql.DB
}

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// GetByID returns the show with its movie title, or ErrShowNotFound.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
    const q = `SELECT s.id, s.movie_id, s.room_id, COALESCE(m.title, ''), s.start_time, s.end_time
               FROM shows s LEFT JOIN movies m ON m.id = s.movie_id
               WHERE s.id = ?`
    var s model.Show
    err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.MovieID, &s.RoomID, &s.MovieTitle, &s.StartTime, &s.EndTime)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrShowNotFound
        }
        return nil, err
    }
    return &s, nil
}
