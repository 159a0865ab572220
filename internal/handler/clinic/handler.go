package clinic

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/handler"
	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/service/clinic"
	apperrors "github.com/clinicore/scheduling-api/pkg/errors"
)

type Handler struct {
	service *clinic.Service
}

func NewHandler(service *clinic.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.DELETE("/:id", h.DeleteClinic)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	cl, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, cl)
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid clinic ID")
		return
	}

	cl, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, cl)
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid clinic ID")
		return
	}

	if err := h.service.DeleteClinic(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, nil)
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.ListClinics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, clinics)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, clinic.ErrNotFound):
		handler.AppError(c, apperrors.NotFound("clinic", err))
	case errors.Is(err, clinic.ErrDuplicate), errors.Is(err, clinic.ErrHasAppointments):
		handler.AppError(c, apperrors.Conflict(err.Error(), err))
	default:
		handler.AppError(c, apperrors.Internal(err))
	}
}
