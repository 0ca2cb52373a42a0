package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"avodah/internal/service"
	"avodah/internal/verse"
)

// VerseSource returns a random bible verse.
type VerseSource interface {
	Random(ctx context.Context) (*verse.Verse, error)
}

// ExtrasHandler serves the verse proxy and error reports.
type ExtrasHandler struct {
	verses  VerseSource
	reports service.ReportService
}

// NewExtrasHandler creates a new extras handler.
func NewExtrasHandler(verses VerseSource, reports service.ReportService) *ExtrasHandler {
	return &ExtrasHandler{verses: verses, reports: reports}
}

// ReportRequest is an error report sent from the client.
type ReportRequest struct {
	Name        string `json:"name" validate:"omitempty,max=128"`
	Email       string `json:"email" validate:"omitempty,email"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// GenerateVerse godoc
// @Summary Fetch a random verse
// @Tags extras
// @Produce json
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/auth/generateVerse [get]
func (h *ExtrasHandler) GenerateVerse(c echo.Context) error {
	v, err := h.verses.Random(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Versículo gerado com sucesso.",
		Success: true,
		Data:    v,
	})
}

// SendReport godoc
// @Summary Send an error report to the maintainers
// @Tags extras
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Report"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/auth/send-report [post]
func (h *ExtrasHandler) SendReport(c echo.Context) error {
	var req ReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.reports.Send(c.Request().Context(), service.Report{
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Relatório enviado com sucesso.",
		Success: true,
	})
}
