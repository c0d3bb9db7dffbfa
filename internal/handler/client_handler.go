package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sai-prashanth/scheduler-api/internal/dto"
	"github.com/sai-prashanth/scheduler-api/internal/models"
	"github.com/sai-prashanth/scheduler-api/internal/service"
	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
	"github.com/sai-prashanth/scheduler-api/pkg/response"
)

type clientImporter interface {
	ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportClientsResponse, error)
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
}

// ClientHandler exposes client intake and listing endpoints.
type ClientHandler struct {
	service clientImporter
}

// NewClientHandler constructs the handler.
func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{service: svc}
}

// Import godoc
// @Summary Import client roster from CSV
// @Description Upload a CSV roster; free-text preference notes are extracted into structured fields
// @Tags Clients
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV roster"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /clients/import [post]
func (h *ClientHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "csv file is required"))
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to open uploaded file"))
		return
	}
	defer reader.Close()

	res, err := h.service.ImportCSV(c.Request.Context(), reader)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Name or email filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	clients, total, err := h.service.List(c.Request.Context(), models.ClientFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, clients, map[string]interface{}{
		"total": total,
		"page":  page,
	})
}
