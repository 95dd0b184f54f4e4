package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

type PriceLister interface {
    List(ctx context.Context) ([]model.TicketPrice, error)
}

type ShowLookup interface {
    GetByID(ctx context.Context, id uint64) (*model.Show, error)
    Search(ctx context.Context, q repository.ShowSearchQuery, now time.Time) ([]model.Show, int64, error)
}

type SeatOccupancy interface {
    Occupied(ctx context.Context, showID uint64) ([]string, error)
}

// CatalogHandler serves the read-only data a client needs to build a cart.
type CatalogHandler struct {
    Prices PriceLister
    Shows  ShowLookup
    Seats  SeatOccupancy
}

func NewCatalogHandler(prices PriceLister, shows ShowLookup, seats SeatOccupancy) *CatalogHandler {
    if prices == nil || shows == nil || seats == nil {
        panic("nil dependency passed to NewCatalogHandler")
    }
    return &CatalogHandler{Prices: prices, Shows: shows, Seats: seats}
}

// TicketTypes handles GET /v1/ticket-types.
func (h *CatalogHandler) TicketTypes(c echo.Context) error {
    list, err := h.Prices.List(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    type item struct {
        TicketType string `json:"ticket_type"`
        Price      string `json:"price"`
    }
    out := make([]item, len(list))
    for i, tp := range list {
        out[i] = item{TicketType: tp.TicketType, Price: money(tp.Price)}
    }
    return c.JSON(http.StatusOK, echo.Map{"ticket_types": out})
}

type showView struct {
    ID         uint64    `json:"id"`
    MovieID    uint64    `json:"movie_id"`
    RoomID     uint64    `json:"room_id"`
    MovieTitle string    `json:"movie_title"`
    StartTime  time.Time `json:"start_time"`
    EndTime    time.Time `json:"end_time"`
}

// SearchShows handles GET /v1/shows?title=&time=upcoming|active|any&page=&page_size=.
func (h *CatalogHandler) SearchShows(c echo.Context) error {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    size, _ := strconv.Atoi(c.QueryParam("page_size"))
    if size < 1 {
        size = 20
    }
    if size > 100 {
        size = 100
    }
    q := repository.ShowSearchQuery{
        Title:      strings.TrimSpace(c.QueryParam("title")),
        TimeFilter: strings.ToLower(strings.TrimSpace(c.QueryParam("time"))),
        Page:       page,
        PageSize:   size,
    }
    list, total, err := h.Shows.Search(c.Request().Context(), q, time.Now())
    if err != nil {
        return writeError(c, err)
    }
    out := make([]showView, len(list))
    for i, s := range list {
        out[i] = showView{ID: s.ID, MovieID: s.MovieID, RoomID: s.RoomID, MovieTitle: s.MovieTitle, StartTime: s.StartTime, EndTime: s.EndTime}
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out, "total": total, "page": page, "page_size": size})
}

// ShowSeats handles GET /v1/shows/:id/seats.  The list is a snapshot; a
// seat shown free can still be lost at checkout.
func (h *CatalogHandler) ShowSeats(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
    }
    ctx := c.Request().Context()
    show, err := h.Shows.GetByID(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    occupied, err := h.Seats.Occupied(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    if occupied == nil {
        occupied = []string{}
    }
    return c.JSON(http.StatusOK, echo.Map{
        "show_id":     show.ID,
        "movie_title": show.MovieTitle,
        "start_time":  show.StartTime,
        "occupied":    occupied,
    })
}
