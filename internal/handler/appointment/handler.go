package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/handler"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/booking"
	"github.com/medibook/booking-api/pkg/auth"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.Actor(c)
	apt, err := h.service.Book(c.Request.Context(), actor.ActorID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	actor := middleware.Actor(c)
	if err := h.service.Cancel(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment cancelled"}))
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	actor := middleware.Actor(c)
	if err := h.service.Complete(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment completed"}))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	actor := middleware.Actor(c)
	appointments, err := h.service.ListByPatient(c.Request.Context(), actor.ActorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	appointments.Use(authMW.Authenticate())
	{
		appointments.POST("", authMW.RequireRole(auth.RolePatient), h.BookAppointment)
		appointments.GET("", authMW.RequireRole(auth.RolePatient), h.ListAppointments)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/complete", authMW.RequireRole(auth.RoleDoctor, auth.RoleAdmin), h.CompleteAppointment)
	}
}
