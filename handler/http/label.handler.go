package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trobz/delivery-carrier/internal/models"
	"github.com/trobz/delivery-carrier/internal/postlogistics"
	"github.com/trobz/delivery-carrier/service"
	"github.com/trobz/delivery-carrier/store"
)

// LabelHandler exposes label generation and the option catalog over HTTP.
type LabelHandler struct {
	labels  *service.LabelService
	options *service.OptionService
}

func NewLabelHandler(labels *service.LabelService, options *service.OptionService) *LabelHandler {
	return &LabelHandler{labels: labels, options: options}
}

// RegisterRoutes attaches the handler routes to a gin engine.
func (h *LabelHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/shipments/:id/labels", h.GenerateLabels)
	api.POST("/shipments/:id/cancel", h.CancelShipment)
	api.GET("/carriers/:id/options", h.AllowedOptions)
	r.GET("/health", h.Health)
}

type generateLabelsRequest struct {
	PackageIDs []string `json:"package_ids"`
	Language   string   `json:"language"`
}

type labelResponse struct {
	Name           string `json:"name"`
	FileType       string `json:"file_type"`
	TrackingNumber string `json:"tracking_number"`
	PackageID      string `json:"package_id,omitempty"`
	File           string `json:"file"` // base64
	TrackingLink   string `json:"tracking_link"`
}

// GenerateLabels generates carrier labels for one shipment.
func (h *LabelHandler) GenerateLabels(c *gin.Context) {
	var req generateLabelsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	labels, err := h.labels.GenerateLabels(c.Request.Context(), c.Param("id"), service.GenerateOptions{
		PackageIDs: req.PackageIDs,
		Lang:       req.Language,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	response := make([]labelResponse, len(labels))
	for i, label := range labels {
		response[i] = labelResponse{
			Name:           label.Name,
			FileType:       label.FileType,
			TrackingNumber: label.TrackingNumber,
			PackageID:      label.PackageID,
			File:           base64.StdEncoding.EncodeToString(label.File),
			TrackingLink:   models.TrackingLink(label.TrackingNumber),
		}
	}
	c.JSON(http.StatusOK, gin.H{"labels": response})
}

// CancelShipment is not supported by the carrier API.
func (h *LabelHandler) CancelShipment(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "the carrier does not support cancelling shipments"})
}

// AllowedOptions lists the catalog options a carrier may select.
func (h *LabelHandler) AllowedOptions(c *gin.Context) {
	options, err := h.options.AllowedOptionsForCarrier(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}

func (h *LabelHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusForError maps the error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var (
		configErr     *postlogistics.ConfigurationError
		authErr       *postlogistics.AuthorizationError
		transportErr  *postlogistics.TransportError
		validationErr *postlogistics.ValidationError
		domainErr     *postlogistics.DomainError
		mappingErr    *service.MappingError
	)
	switch {
	case errors.Is(err, store.ErrShipmentNotFound),
		errors.Is(err, store.ErrCarrierNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrPackageNotFound):
		return http.StatusNotFound
	case errors.As(err, &configErr), errors.As(err, &domainErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusBadGateway
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transportErr), errors.As(err, &mappingErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
