// Package storage provides the durable and in-memory snapshot stores
// backing the game's persistence bridge: an opaque mapping from room ID
// to a serialized session snapshot.
package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// RoomSnapshot is the persisted row: one blob per room.
type RoomSnapshot struct {
	RoomID    string `gorm:"primaryKey;size:64"`
	Data      []byte `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// Postgres stores snapshots in a single upsert-only table.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&RoomSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (s *Postgres) Save(roomID string, data []byte) error {
	row := RoomSnapshot{
		RoomID: roomID,
		Data:   data,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (s *Postgres) LoadAll() (map[string][]byte, error) {
	var rows []RoomSnapshot
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	snaps := make(map[string][]byte, len(rows))
	for _, row := range rows {
		snaps[row.RoomID] = row.Data
	}

	return snaps, nil
}

func (s *Postgres) Delete(roomID string) error {
	return s.db.Delete(&RoomSnapshot{}, "room_id = ?", roomID).Error
}

func (s *Postgres) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
