package storage

import (
	"context"
	"errors"

	"github.com/princekumarofficial/videos-service/internal/types"
)

var (
	ErrVideoExists   = errors.New("video already exists")
	ErrVideoNotFound = errors.New("video not found")
)

type Storage interface {
	GetVideo(ctx context.Context, id int64) (types.Video, error)
	CreateVideo(ctx context.Context, video types.Video) error
	UpdateVideo(ctx context.Context, id int64, patch types.VideoPatchRequest) (types.Video, error)
	DeleteVideo(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}
