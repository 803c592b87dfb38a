package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "motoagenda/internal/appointments/errors"
	"motoagenda/pkg/config"
	"motoagenda/pkg/model"

	"gorm.io/gorm"
)

type gormAppointmentRepository struct {
	db           *gorm.DB
	locks        *dateLocker
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewGormAppointmentRepository(db *gorm.DB, cfg *config.Config) AppointmentRepository {
	return &gormAppointmentRepository{
		db:           db,
		locks:        newDateLocker(),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// CreateWithinCapacity serializes bookings per date with an in-process lock
// and, on postgres, a transaction-scoped advisory lock so several instances
// sharing the database also agree.
func (r *gormAppointmentRepository) CreateWithinCapacity(ctx context.Context, appt *model.Appointment, capacity int) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	unlock, err := r.locks.Lock(ctx, appt.Date)
	if err != nil {
		return err
	}
	defer unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", appt.Date).Error; err != nil {
				return fmt.Errorf("%w: failed to lock date %s: %w", appointmentserrors.ErrStorageRead, appt.Date, err)
			}
		}

		var count int64
		if err := tx.Model(&model.Appointment{}).Where("data = ?", appt.Date).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: failed to count appointments: %w", appointmentserrors.ErrStorageRead, err)
		}
		if count >= int64(capacity) {
			return appointmentserrors.ErrCapacityExceeded
		}

		if err := tx.Create(appt).Error; err != nil {
			return fmt.Errorf("%w: failed to create appointment: %w", appointmentserrors.ErrStorageWrite, err)
		}
		return nil
	})
}

func (r *gormAppointmentRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("data = ?", date).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count appointments: %w", appointmentserrors.ErrStorageRead, err)
	}
	return count, nil
}

func (r *gormAppointmentRepository) FindFullDates(ctx context.Context, capacity int) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var dates []string
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Group("data").
		Having("COUNT(*) >= ?", capacity).
		Order("data").
		Pluck("data", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find full dates: %w", appointmentserrors.ErrStorageRead, err)
	}

	if dates == nil {
		dates = []string{}
	}
	return dates, nil
}

func (r *gormAppointmentRepository) FindByID(ctx context.Context, id int64) (*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var appt model.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to find appointment: %w", appointmentserrors.ErrStorageRead, err)
	}
	return &appt, nil
}

func (r *gormAppointmentRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
