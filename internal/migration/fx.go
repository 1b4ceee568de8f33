package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/config"
	taskdomain "github.com/smallbiznis/ledgerline/internal/task/domain"
	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations are postgres-specific. Other dialects (sqlite
		// for local development, mysql) fall back to schema sync from the
		// gorm models.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&txdomain.Transaction{}, &taskdomain.Task{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
