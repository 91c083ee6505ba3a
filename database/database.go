package database

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/posts"
	"socialhub-app/internal/domain/users"
)

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		// core
		&users.User{},
		&billing.Subscription{},

		// billing event log
		&billing.Event{},

		// publishing
		&posts.Post{},
	}
}

// Open connects to Postgres and migrates all domain models.
func Open(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("connected and migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(Models()...), "auto-migrate")
}
