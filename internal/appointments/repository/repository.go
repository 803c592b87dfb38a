package repository

import (
	"context"
	"time"

	"motoagenda/pkg/model"
)

const (
	CollectionName = "agendamentos"
)

type AppointmentRepository interface {
	// CreateWithinCapacity inserts appt only if fewer than capacity rows exist
	// for appt.Date. Count and insert are atomic with respect to other calls
	// for the same date. Returns ErrCapacityExceeded without writing otherwise.
	CreateWithinCapacity(ctx context.Context, appt *model.Appointment, capacity int) error
	CountByDate(ctx context.Context, date string) (int64, error)
	FindFullDates(ctx context.Context, capacity int) ([]string, error)
	FindByID(ctx context.Context, id int64) (*model.Appointment, error)
	Ping(ctx context.Context) error
}

// withTimeout bounds ctx by timeout unless the caller already set a tighter
// deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
