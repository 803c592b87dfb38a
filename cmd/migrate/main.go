package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"motoagenda/internal/migrations"
	"motoagenda/pkg/config"
	"motoagenda/pkg/db"
)

const JobName = "agendamentos-migration"

const migrationTimeout = 120 * time.Second

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	cfg := config.Load(JobName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.Log.Info("Starting migration job", "driver", cfg.DBDriver)

	var (
		gormDB *gorm.DB
		client *mongo.Client
		err    error
	)

	if cfg.DBDriver == config.DriverMongo {
		client, err = db.ConnectMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer client.Disconnect(context.Background())
	} else {
		gormDB, err = db.OpenGorm(cfg)
		if err != nil {
			cfg.Log.Fatal("Failed to open database", "error", err)
		}
		defer db.CloseGorm(gormDB)
	}

	if err := migrations.Run(ctx, cfg, gormDB, client); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
