package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"motoagenda/internal/appointments/repository"
	"motoagenda/pkg/config"
	"motoagenda/pkg/db"
	"motoagenda/pkg/logger"
	"motoagenda/pkg/model"
)

func TestRun_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "agendamentos.db"),
		Log:        logger.Discard(),
	}

	gormDB, err := db.OpenGorm(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.CloseGorm(gormDB)

	// Running twice must be harmless.
	for i := 0; i < 2; i++ {
		if err := Run(context.Background(), cfg, gormDB, nil); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if !gormDB.Migrator().HasTable(&model.Appointment{}) {
		t.Fatal("agendamentos table missing")
	}
	if !gormDB.Migrator().HasIndex(&model.Appointment{}, "idx_agendamentos_data") {
		t.Error("date index missing")
	}
}

func TestRun_RejectsMissingHandles(t *testing.T) {
	tests := []struct {
		name   string
		driver string
	}{
		{name: "mongo without client", driver: config.DriverMongo},
		{name: "sqlite without db", driver: config.DriverSQLite},
		{name: "unknown driver", driver: "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBDriver: tt.driver, Log: logger.Discard()}
			if err := Run(context.Background(), cfg, nil, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestMongoCollections(t *testing.T) {
	defs := MongoCollections()

	names := make(map[string]collectionDefinition, len(defs))
	for _, def := range defs {
		names[def.Name] = def
	}

	for _, want := range []string{repository.CollectionName, repository.LocksCollectionName, repository.CountersCollectionName} {
		if _, ok := names[want]; !ok {
			t.Errorf("collection %s not migrated", want)
		}
	}

	locks := names[repository.LocksCollectionName]
	if len(locks.Indexes) != 1 || locks.Indexes[0].Options.ExpireAfterSeconds == nil {
		t.Error("lock collection must carry a TTL index")
	}
}
