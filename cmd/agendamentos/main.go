package main

import (
	"context"

	"motoagenda/internal/appointments/events"
	"motoagenda/internal/appointments/handler"
	"motoagenda/internal/appointments/repository"
	"motoagenda/internal/appointments/service"
	"motoagenda/internal/appointments/validator"
	"motoagenda/internal/migrations"
	"motoagenda/pkg/app"
	"motoagenda/pkg/config"
	"motoagenda/pkg/contactlink"
	"motoagenda/pkg/db"
)

const ServiceName = "agendamentos"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	application := app.NewApplication(cfg)

	repo := initRepository(cfg, application)

	links, err := contactlink.NewBuilder(cfg.WhatsAppOwnerPhone)
	if err != nil {
		cfg.Log.Fatal("Invalid WhatsApp owner phone", "error", err, "phone", cfg.WhatsAppOwnerPhone)
	}

	publisher, err := events.New(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	application.OnShutdown("events", func(context.Context) error { return publisher.Close() })

	appointmentService := service.NewAppointmentService(
		repo,
		validator.NewAppointmentValidator(cfg.Log),
		links,
		publisher,
		cfg,
	)
	cfg.Log.Info("Appointment service initialized", "daily_capacity", cfg.DailyCapacity)

	application.SetApp(
		handler.NewAppointmentHandler(appointmentService, cfg.Log),
		handler.NewHealthHandler(repo, cfg.Log),
		handler.NewStaticHandler(cfg.StaticDir, cfg.Log),
	)
	application.Run()
}

// initRepository opens the configured backend and registers its release with
// the application.
func initRepository(cfg *config.Config, application *app.Application) repository.AppointmentRepository {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		application.OnShutdown("mongo", client.Disconnect)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()

		if err := migrations.Run(ctx, cfg, nil, client); err != nil {
			cfg.Log.Fatal("Failed to prepare MongoDB collections", "error", err)
		}
		return repository.NewMongoAppointmentRepository(client, cfg)

	default:
		gormDB, err := db.OpenGorm(cfg)
		if err != nil {
			cfg.Log.Fatal("Failed to open database", "driver", cfg.DBDriver, "error", err)
		}
		application.OnShutdown(cfg.DBDriver, func(context.Context) error { return db.CloseGorm(gormDB) })
		return repository.NewGormAppointmentRepository(gormDB, cfg)
	}
}
