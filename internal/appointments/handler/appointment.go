package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"motoagenda/internal/appointments/service"
	apperrors "motoagenda/pkg/errors"
	httputil "motoagenda/pkg/http"
	"motoagenda/pkg/logger"
	"motoagenda/pkg/middleware"
	"motoagenda/pkg/model"
)

const MsgInvalidBody = "Corpo da requisição inválido."

type BookingResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	WhatsApp string `json:"whatsapp"`
}

type FullDatesResponse struct {
	Success bool     `json:"success"`
	Dates   []string `json:"datas"`
}

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid booking request body",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		h.writeError(w, "Create", decodeError(err))
		return
	}

	confirmation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, BookingResponse{
		Success:  true,
		Message:  confirmation.Message,
		WhatsApp: confirmation.WhatsApp,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *AppointmentHandler) FullDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dates, err := h.service.ListFullDates(r.Context())
	if err != nil {
		h.writeError(w, "FullDates", err)
		return
	}

	if dates == nil {
		dates = []string{}
	}

	if err := httputil.WriteJSON(w, http.StatusOK, FullDatesResponse{
		Success: true,
		Dates:   dates,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "FullDates", "operation", "WriteJSON", "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/agendar", h.Create)
	router.GET("/datas-cheias", h.FullDates)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func decodeError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.PayloadTooLarge(middleware.MsgPayloadTooLarge).
			WithDetails(map[string]any{"limit_bytes": maxBytesErr.Limit})
	}
	return apperrors.InvalidInput(MsgInvalidBody)
}
