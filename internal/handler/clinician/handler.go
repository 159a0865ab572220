package clinician

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/handler"
	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/service/clinician"
	apperrors "github.com/clinicore/scheduling-api/pkg/errors"
)

type Handler struct {
	service *clinician.Service
}

func NewHandler(service *clinician.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinicians := r.Group("/clinicians")
	{
		clinicians.POST("", h.CreateClinician)
		clinicians.GET("", h.ListClinicians)
		clinicians.GET("/:id", h.GetClinician)
		clinicians.DELETE("/:id", h.DeleteClinician)
	}
}

func (h *Handler) CreateClinician(c *gin.Context) {
	var req model.CreateClinicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	cl, err := h.service.CreateClinician(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, cl)
}

func (h *Handler) GetClinician(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid clinician ID")
		return
	}

	cl, err := h.service.GetClinician(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, cl)
}

func (h *Handler) DeleteClinician(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid clinician ID")
		return
	}

	if err := h.service.DeleteClinician(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, nil)
}

func (h *Handler) ListClinicians(c *gin.Context) {
	filters := &model.ClinicianFilters{
		Specialty: c.Query("specialty"),
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.ClinicianStatus(status)
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		handler.BadRequest(c, "invalid pagination")
		return
	}

	clinicians, err := h.service.ListClinicians(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, clinicians)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, clinician.ErrNotFound):
		handler.AppError(c, apperrors.NotFound("clinician", err))
	case errors.Is(err, clinician.ErrDuplicate), errors.Is(err, clinician.ErrHasAppointments):
		handler.AppError(c, apperrors.Conflict(err.Error(), err))
	default:
		handler.AppError(c, apperrors.Internal(err))
	}
}
