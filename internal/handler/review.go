package handler

import (
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/service"
)

// ReviewHandler serves /api/reviews.
type ReviewHandler struct {
    base
    reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService, log *zap.Logger) *ReviewHandler {
    return &ReviewHandler{base: base{log: log}, reviews: reviews}
}

type reviewReq struct {
    EventID string  `json:"eventId"`
    Rating  int     `json:"rating"`
    Comment *string `json:"comment"`
}

func (r reviewReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.EventID, validation.Required),
        validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
        validation.Field(&r.Comment, validation.Length(0, 2000)),
    )
}

type reviewUpdateReq struct {
    Rating  int     `json:"rating"`
    Comment *string `json:"comment"`
}

func (r reviewUpdateReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
        validation.Field(&r.Comment, validation.Length(0, 2000)),
    )
}

func (h *ReviewHandler) Create(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req reviewReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    rv, err := h.reviews.Create(c.Request().Context(), req.EventID, id.ID,
        service.ReviewInput{Rating: req.Rating, Comment: req.Comment})
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "review created successfully", rv)
}

func (h *ReviewHandler) List(c echo.Context) error {
    list, err := h.reviews.List(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "reviews retrieved", list)
}

func (h *ReviewHandler) ForEvent(c echo.Context) error {
    list, err := h.reviews.ForEvent(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "reviews retrieved", list)
}

// ForHost returns a host's reviews with the rating aggregate.
func (h *ReviewHandler) ForHost(c echo.Context) error {
    agg, err := h.reviews.ForHost(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "host reviews retrieved", agg)
}

func (h *ReviewHandler) Update(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req reviewUpdateReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    rv, err := h.reviews.Update(c.Request().Context(), c.Param("id"), id,
        service.ReviewInput{Rating: req.Rating, Comment: req.Comment})
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "review updated successfully", rv)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.reviews.Delete(c.Request().Context(), c.Param("id"), id); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "review deleted successfully", nil)
}
