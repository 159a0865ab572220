package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/handler"
	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/service/patient"
	apperrors "github.com/clinicore/scheduling-api/pkg/errors"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid patient ID")
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid patient ID")
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, nil)
}

func (h *Handler) ListPatients(c *gin.Context) {
	filters := &model.PatientFilters{}
	if status := c.Query("status"); status != "" {
		filters.Status = model.PatientStatus(status)
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		handler.BadRequest(c, "invalid pagination")
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, patients)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, patient.ErrNotFound):
		handler.AppError(c, apperrors.NotFound("patient", err))
	case errors.Is(err, patient.ErrDuplicate), errors.Is(err, patient.ErrHasAppointments):
		handler.AppError(c, apperrors.Conflict(err.Error(), err))
	default:
		handler.AppError(c, apperrors.Internal(err))
	}
}
