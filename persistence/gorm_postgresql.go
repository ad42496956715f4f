// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/roomserver/models"
)

// GormPostgreSQL is the GORM implementation of Store.
type GormPostgreSQL struct {
	db *gorm.DB
}

// gormGameRecord is the table mapping for archived games.
type gormGameRecord struct {
	ID        uint     `gorm:"primaryKey"`
	RoomID    int64    `gorm:"index;not null"`
	GameType  string   `gorm:"not null"`
	Settings  string   `gorm:"not null"`
	Players   []string `gorm:"serializer:json;type:jsonb"`
	Result    []byte   `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (gormGameRecord) TableName() string {
	return "game_records"
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&gormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	row := &gormGameRecord{
		RoomID:   record.RoomID,
		GameType: record.GameType,
		Settings: record.Settings,
		Players:  record.Players,
		Result:   []byte(record.Result),
	}
	return g.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
}

func (g *GormPostgreSQL) RecentGameRecords(limit int) ([]*models.GameRecord, error) {
	var rows []gormGameRecord
	if err := g.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*models.GameRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, &models.GameRecord{
			RoomID:    row.RoomID,
			GameType:  row.GameType,
			Settings:  row.Settings,
			Players:   row.Players,
			Result:    row.Result,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
