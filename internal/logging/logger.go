package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout until the database handler joins.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout)))
}

func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
