package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-api/internal/model"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// StatusForError maps domain errors to HTTP statuses at the boundary.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrDoctorNotFound),
		errors.Is(err, model.ErrPatientNotFound),
		errors.Is(err, model.ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSlotTaken),
		errors.Is(err, model.ErrAlreadyPaid),
		errors.Is(err, model.ErrAppointmentCancelled),
		errors.Is(err, model.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrDoctorUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidSignature),
		errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the mapped status. Internal failures get a generic
// message so wrapped detail never leaks to clients.
func RespondError(c *gin.Context, err error) {
	status := StatusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, NewErrorResponse(message))
}
