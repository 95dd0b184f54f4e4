package model

import "time"

// Show is a scheduled screening of a movie in a room.  EndTime is the start
// plus the movie duration and is computed by catalogue management when the
// show is created; the booking core only reads shows.
type Show struct {
    ID         uint64    // shows.id
    MovieID    uint64    // shows.movie_id
    RoomID     uint64    // shows.room_id
    MovieTitle string    // movies.title
    StartTime  time.Time // shows.start_time
    EndTime    time.Time // shows.end_time
}

