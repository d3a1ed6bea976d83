package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FeedbackRequest rates an order
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitFeedback records the rating of an order
func (h *Handler) SubmitFeedback(c echo.Context) error {
	id, err := uintParam(c, "order_id")
	if err != nil {
		return badRequest(c, "Invalid order id", err)
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	fb, err := h.svc.Feedback.Submit(c.Request().Context(), id, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, fb)
}

// Leaderboard returns staff ranked by points
func (h *Handler) Leaderboard(c echo.Context) error {
	entries, err := h.svc.Leaderboard.Leaderboard(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
