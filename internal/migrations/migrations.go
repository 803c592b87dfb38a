package migrations

import (
	"context"
	"fmt"

	"motoagenda/pkg/config"
	"motoagenda/pkg/db"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Run prepares the store selected by cfg.DBDriver. The SQL stores are
// migrated by db.OpenGorm; Run only reports them.
func Run(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, client *mongo.Client) error {
	switch cfg.DBDriver {
	case config.DriverMongo:
		if client == nil {
			return fmt.Errorf("mongo migration requires a client")
		}
		return RunMongo(ctx, client.Database(cfg.MongoDatabaseName), cfg.Log)
	case config.DriverSQLite, config.DriverPostgres:
		if gormDB == nil {
			return fmt.Errorf("%s migration requires an open database", cfg.DBDriver)
		}
		if err := db.Migrate(gormDB.WithContext(ctx)); err != nil {
			return err
		}
		cfg.Log.Info("SQL migrations applied", "driver", cfg.DBDriver)
		return nil
	default:
		return fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}
