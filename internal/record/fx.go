package record

import (
	"fmt"

	"github.com/coursely/payrelay/internal/config"
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("record",
	fx.Provide(provideRepository),
)

func provideRepository(cfg config.Config, log *zap.Logger) (Repository, error) {
	if !cfg.Database.Configured() {
		log.Info("payment record store disabled, no database configured")
		return NoOpRepository{}, nil
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PaymentRecord{}); err != nil {
		return nil, err
	}

	log.Info("payment record store ready", zap.String("driver", cfg.Database.Driver))
	return NewRepository(db), nil
}
