package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/princekumarofficial/videos-service/internal/config"
	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/types"
)

// uniqueViolation is the SQLSTATE for a unique or primary key conflict.
const uniqueViolation = "23505"

type Postgres struct {
	Db *sql.DB
}

var _ storage.Storage = (*Postgres)(nil)

func NewPostgres(cfg config.PQSQL) (*Postgres, error) {
	return Open(cfg.DSN())
}

func Open(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to Postgres database")

	return &Postgres{Db: db}, nil
}

func (p *Postgres) CreateSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS videos (
		id BIGINT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		views BIGINT NOT NULL,
		likes BIGINT NOT NULL
	);
	`

	if _, err := p.Db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create videos table: %w", err)
	}
	return nil
}

func (p *Postgres) GetVideo(ctx context.Context, id int64) (types.Video, error) {
	var video types.Video
	query := `
	SELECT id, name, views, likes FROM videos WHERE id = $1
	`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&video.ID, &video.Name, &video.Views, &video.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Video{}, storage.ErrVideoNotFound
	}
	if err != nil {
		return types.Video{}, fmt.Errorf("failed to get video %d: %w", id, err)
	}

	return video, nil
}

func (p *Postgres) CreateVideo(ctx context.Context, video types.Video) error {
	query := `
	INSERT INTO videos (id, name, views, likes)
	VALUES ($1, $2, $3, $4)
	`

	_, err := p.Db.ExecContext(ctx, query, video.ID, video.Name, video.Views, video.Likes)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrVideoExists
		}
		return fmt.Errorf("failed to insert video %d: %w", video.ID, err)
	}

	return nil
}

func (p *Postgres) UpdateVideo(ctx context.Context, id int64, patch types.VideoPatchRequest) (types.Video, error) {
	tx, err := p.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Video{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var video types.Video
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, views, likes FROM videos WHERE id = $1 FOR UPDATE`, id,
	).Scan(&video.ID, &video.Name, &video.Views, &video.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Video{}, storage.ErrVideoNotFound
	}
	if err != nil {
		return types.Video{}, fmt.Errorf("failed to lock video %d: %w", id, err)
	}

	patch.Apply(&video)

	_, err = tx.ExecContext(ctx,
		`UPDATE videos SET name = $2, views = $3, likes = $4 WHERE id = $1`,
		video.ID, video.Name, video.Views, video.Likes,
	)
	if err != nil {
		return types.Video{}, fmt.Errorf("failed to update video %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return types.Video{}, fmt.Errorf("failed to commit video %d: %w", id, err)
	}

	return video, nil
}

func (p *Postgres) DeleteVideo(ctx context.Context, id int64) error {
	result, err := p.Db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrVideoNotFound
	}

	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.Db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.Db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
