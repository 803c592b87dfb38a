package service

import (
	"context"
	"errors"
	"fmt"

	appointmentserrors "motoagenda/internal/appointments/errors"
	"motoagenda/internal/appointments/events"
	"motoagenda/internal/appointments/repository"
	"motoagenda/internal/appointments/validator"
	"motoagenda/pkg/config"
	"motoagenda/pkg/contactlink"
	apperrors "motoagenda/pkg/errors"
	"motoagenda/pkg/middleware"
	"motoagenda/pkg/model"
)

const (
	MsgMissingFields = "Campos obrigatórios faltando."
	MsgDatabaseError = "Erro no banco de dados."
	MsgSaveError     = "Erro ao salvar agendamento."
)

type AppointmentService interface {
	Create(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error)
	ListFullDates(ctx context.Context) ([]string, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	validator *validator.AppointmentValidator
	links     *contactlink.Builder
	events    events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	validator *validator.AppointmentValidator,
	links *contactlink.Builder,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		validator: validator,
		links:     links,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	appt := req.ToAppointment()
	if err := s.repo.CreateWithinCapacity(ctx, appt, s.cfg.DailyCapacity); err != nil {
		return nil, s.translateCreateError(appt, err)
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appt.ID,
		"date", appt.Date,
		"time", appt.Time,
		"service_type", appt.ServiceType,
	)

	// The row is committed at this point; a broker outage must not turn an
	// accepted booking into a failure or hold the response.
	s.publishCreated(ctx, appt)

	return &model.BookingConfirmation{
		Appointment: appt,
		Message:     fmt.Sprintf("Agendamento confirmado para %s às %s", appt.Date, appt.Time),
		WhatsApp:    s.links.Build(appt),
	}, nil
}

func (s *appointmentService) ListFullDates(ctx context.Context) ([]string, error) {
	dates, err := s.repo.FindFullDates(ctx, s.cfg.DailyCapacity)
	if err != nil {
		s.cfg.Log.Error("Failed to list full dates", "error", err)
		return nil, apperrors.Storage(MsgDatabaseError, err)
	}

	s.cfg.Log.Debug("Full dates listed", "count", len(dates))
	return dates, nil
}

// --- Helpers ---

func (s *appointmentService) publishCreated(ctx context.Context, appt *model.Appointment) {
	timeout := s.cfg.KafkaPublishTimeout
	if timeout <= 0 {
		timeout = config.DefaultKafkaPublishTimeout
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.events.PublishCreated(publishCtx, appt, middleware.RequestIDFromContext(ctx)); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event", "id", appt.ID, "timeout", timeout.String(), "error", err)
	}
}

func (s *appointmentService) validate(req *model.AppointmentRequest) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	s.cfg.Log.Warn("Appointment validation failed", "error", err)

	details := map[string]any{"error": err.Error()}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details["fields"] = validationErrs.Fields()
	}
	return apperrors.Validation(MsgMissingFields, details)
}

func (s *appointmentService) translateCreateError(appt *model.Appointment, err error) error {
	switch {
	case errors.Is(err, appointmentserrors.ErrCapacityExceeded):
		s.cfg.Log.Info("Appointment rejected, date is full", "date", appt.Date, "capacity", s.cfg.DailyCapacity)
		return apperrors.CapacityExceeded(CapacityMessage(s.cfg.DailyCapacity))
	case errors.Is(err, appointmentserrors.ErrStorageRead), errors.Is(err, appointmentserrors.ErrDateLocked):
		s.cfg.Log.Error("Failed to check appointment capacity", "date", appt.Date, "error", err)
		return apperrors.Storage(MsgDatabaseError, err)
	default:
		s.cfg.Log.Error("Failed to create appointment", "date", appt.Date, "error", err)
		return apperrors.Storage(MsgSaveError, err)
	}
}

func CapacityMessage(capacity int) string {
	return fmt.Sprintf("Limite diário de %d motos atingido para esta data.", capacity)
}
