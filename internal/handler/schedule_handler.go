package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sai-prashanth/scheduler-api/internal/dto"
	"github.com/sai-prashanth/scheduler-api/internal/service"
	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
	"github.com/sai-prashanth/scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	GetRun(id string) (*dto.GenerateScheduleResponse, error)
	ExportRun(id, format string) ([]byte, string, error)
}

// ScheduleHandler exposes schedule generation endpoints.
type ScheduleHandler struct {
	service scheduleGenerator
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.SchedulerService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate a session schedule
// @Description Build the availability calendar for the date range and allocate client sessions
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	res, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, runMeta(res))
}

// GetRun godoc
// @Summary Fetch a previously generated run
// @Tags Scheduler
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/runs/{id} [get]
func (h *ScheduleHandler) GetRun(c *gin.Context) {
	res, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, runMeta(res))
}

// Export godoc
// @Summary Export a run as CSV or PDF
// @Tags Scheduler
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /schedule/runs/{id}/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, filename, err := h.service.ExportRun(c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == "pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

// runMeta flags runs that produced no sessions so callers can tell an
// empty schedule from a failed one.
func runMeta(res *dto.GenerateScheduleResponse) map[string]interface{} {
	if len(res.Sessions) > 0 {
		return nil
	}
	return map[string]interface{}{"note": "no sessions could be scheduled for this range"}
}
