package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/princekumarofficial/videos-service/internal/config"
)

// Setup installs the default slog logger for env and returns it.
func Setup(env string) *slog.Logger {
	logger := New(os.Stdout, env)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, env string) *slog.Logger {
	if env == config.EnvLocal {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
