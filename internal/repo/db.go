package repo

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FindIt/internal/model"
)

// Поддерживаемые драйверы БД.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// InitDB открывает соединение с БД выбранного драйвера и применяет миграции.
func InitDB(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = "findit.db"
		}
		// modernc.org/sqlite регистрируется под именем "sqlite"
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	case DriverPostgres:
		dial = postgres.Open(dsn)
	case DriverMySQL:
		dial = mysql.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported driver '%s'", driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("db: open %s failed", driver))
	}
	if driver == "" || driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "db: sql handle")
		}
		// sqlite допускает одного писателя
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт или обновляет схему для всех серверных моделей.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Claim{},
		&model.Message{},
		&model.HandoverCode{},
	)
	return errors.Wrap(err, "db: automigrate failed")
}
