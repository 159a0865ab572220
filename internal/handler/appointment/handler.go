package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/handler"
	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/service/scheduling"
	apperrors "github.com/clinicore/scheduling-api/pkg/errors"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PUT("/:id/complete", h.CompleteAppointment)
		appointments.PUT("/:id/cancel", h.CancelAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("clinic_id"); id != "" {
		clinicID, err := uuid.Parse(id)
		if err != nil {
			handler.BadRequest(c, "invalid clinic ID")
			return
		}
		filters.ClinicID = clinicID
	}
	if id := c.Query("clinician_id"); id != "" {
		clinicianID, err := uuid.Parse(id)
		if err != nil {
			handler.BadRequest(c, "invalid clinician ID")
			return
		}
		filters.ClinicianID = clinicianID
	}
	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			handler.BadRequest(c, "invalid patient ID")
			return
		}
		filters.PatientID = patientID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		start, err := time.Parse(time.RFC3339, date)
		if err != nil {
			handler.BadRequest(c, "invalid start date")
			return
		}
		filters.StartDate = start
	}
	if date := c.Query("end_date"); date != "" {
		end, err := time.Parse(time.RFC3339, date)
		if err != nil {
			handler.BadRequest(c, "invalid end date")
			return
		}
		filters.EndDate = end
	}
	if err := c.ShouldBindQuery(&filters.Sort); err != nil {
		handler.BadRequest(c, "invalid sort parameters")
		return
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		handler.BadRequest(c, "invalid pagination")
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.CompleteAppointment(c.Request.Context(), id, &req)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id); err != nil {
		respondSchedulingError(c, err)
		return
	}

	handler.Success(c, http.StatusOK, nil)
}

// respondSchedulingError translates engine rejections into transport codes.
func respondSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrAppointmentNotFound),
		errors.Is(err, scheduling.ErrPatientNotFound),
		errors.Is(err, scheduling.ErrClinicianNotFound),
		errors.Is(err, scheduling.ErrClinicNotFound):
		handler.AppError(c, apperrors.Wrap(apperrors.ErrNotFound, err))
	case errors.Is(err, scheduling.ErrPatientDoubleBooked),
		errors.Is(err, scheduling.ErrClinicianDoubleBooked),
		errors.Is(err, scheduling.ErrInvalidStateTransition):
		handler.AppError(c, apperrors.Conflict(err.Error(), err))
	case errors.Is(err, scheduling.ErrPatientInactive),
		errors.Is(err, scheduling.ErrClinicianNotQualified),
		scheduling.IsRuleViolation(err):
		handler.AppError(c, apperrors.Unprocessable(err.Error(), err))
	default:
		handler.AppError(c, apperrors.Internal(err))
	}
}
