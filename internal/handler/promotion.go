package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/service"
)

// PromotionAdmin is the promotion catalogue as administrators see it.
type PromotionAdmin interface {
    Create(ctx context.Context, p *model.Promotion) error
    List(ctx context.Context) ([]model.Promotion, error)
    Delete(ctx context.Context, id uint64) error
}

// PromotionHandler manages promotion codes for admins.
type PromotionHandler struct {
    Repo PromotionAdmin
}

func NewPromotionHandler(repo PromotionAdmin) *PromotionHandler {
    if repo == nil {
        panic("nil PromotionAdmin passed to NewPromotionHandler")
    }
    return &PromotionHandler{Repo: repo}
}

type createPromotionRequest struct {
    Title              string          `json:"title" validate:"required,max=128"`
    Description        string          `json:"description" validate:"required,max=64"`
    DiscountPercentage decimal.Decimal `json:"discount_percentage"`
    SendTime           string          `json:"send_time" validate:"omitempty,datetime=15:04:05"`
    Confirmed          bool            `json:"confirmed"`
}

type promotionAdminView struct {
    ID                 uint64 `json:"id"`
    Title              string `json:"title"`
    Description        string `json:"description"`
    DiscountPercentage string `json:"discount_percentage"`
    IsSent             bool   `json:"is_sent"`
    SendTime           string `json:"send_time"`
}

func newPromotionAdminView(p model.Promotion) promotionAdminView {
    return promotionAdminView{
        ID:                 p.ID,
        Title:              p.Title,
        Description:        p.Description,
        DiscountPercentage: p.DiscountPercentage.String(),
        IsSent:             p.IsSent,
        SendTime:           p.SendTime,
    }
}

var maxDiscount = decimal.NewFromInt(100)

// Create handles POST /v1/admin/promotions.  Without "confirmed": true the
// request is only validated and echoed back for the admin to confirm.
func (h *PromotionHandler) Create(c echo.Context) error {
    var req createPromotionRequest
    if err := bindValid(c, &req); err != nil {
        return writeError(c, err)
    }
    if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(maxDiscount) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount percentage must be between 0 and 100"})
    }
    p := model.Promotion{
        Title:              req.Title,
        Description:        req.Description,
        DiscountPercentage: req.DiscountPercentage,
        SendTime:           req.SendTime,
    }
    if p.SendTime == "" {
        p.SendTime = model.DefaultSendTime
    }
    if !req.Confirmed {
        return c.JSON(http.StatusOK, echo.Map{
            "message": "Please confirm the promotion details",
            "data":    newPromotionAdminView(p),
        })
    }
    if err := h.Repo.Create(c.Request().Context(), &p); err != nil {
        return writeError(c, err)
    }
    c.Logger().Infof("promotion %d (%s) created", p.ID, p.Description)
    return c.JSON(http.StatusCreated, echo.Map{
        "message":      "Promotion created successfully",
        "promotion_id": p.ID,
    })
}

// List handles GET /v1/admin/promotions.
func (h *PromotionHandler) List(c echo.Context) error {
    list, err := h.Repo.List(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    out := make([]promotionAdminView, len(list))
    for i, p := range list {
        out[i] = newPromotionAdminView(p)
    }
    return c.JSON(http.StatusOK, echo.Map{"promotions": out})
}

// Delete handles DELETE /v1/admin/promotions/:id.  Promotions whose mail
// blast already went out are kept (409).
func (h *PromotionHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return writeError(c, service.ErrValidation)
    }
    if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Promotion deleted successfully"})
}
