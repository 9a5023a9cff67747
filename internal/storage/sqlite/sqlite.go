package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SQLite struct {
	Db *gorm.DB
}

var _ storage.Storage = (*SQLite)(nil)

// NewSQLite opens the database file at path. ":memory:" is accepted for tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	// One writer at a time; also keeps a ":memory:" database on a single connection.
	sqlDB.SetMaxOpenConns(1)

	slog.Info("Opened sqlite database", slog.String("path", path))

	return &SQLite{Db: db}, nil
}

func (s *SQLite) CreateSchema(ctx context.Context) error {
	if err := s.Db.WithContext(ctx).AutoMigrate(&types.Video{}); err != nil {
		return fmt.Errorf("creating videos table: %w", err)
	}
	return nil
}

func (s *SQLite) GetVideo(ctx context.Context, id int64) (types.Video, error) {
	var video types.Video
	err := s.Db.WithContext(ctx).First(&video, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Video{}, storage.ErrVideoNotFound
	}
	if err != nil {
		return types.Video{}, fmt.Errorf("getting video %d: %w", id, err)
	}
	return video, nil
}

func (s *SQLite) CreateVideo(ctx context.Context, video types.Video) error {
	return s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&types.Video{}).Where("id = ?", video.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("checking video %d: %w", video.ID, err)
		}
		if count > 0 {
			return storage.ErrVideoExists
		}

		if err := tx.Create(&video).Error; err != nil {
			if isUniqueViolation(err) {
				return storage.ErrVideoExists
			}
			return fmt.Errorf("creating video %d: %w", video.ID, err)
		}
		return nil
	})
}

func (s *SQLite) UpdateVideo(ctx context.Context, id int64, patch types.VideoPatchRequest) (types.Video, error) {
	var video types.Video
	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&video, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrVideoNotFound
		}
		if err != nil {
			return fmt.Errorf("getting video %d: %w", id, err)
		}

		patch.Apply(&video)

		// Save writes every column, so zero values are persisted too.
		if err := tx.Save(&video).Error; err != nil {
			return fmt.Errorf("updating video %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return types.Video{}, err
	}
	return video, nil
}

func (s *SQLite) DeleteVideo(ctx context.Context, id int64) error {
	result := s.Db.WithContext(ctx).Delete(&types.Video{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting video %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrVideoNotFound
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
