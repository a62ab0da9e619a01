// Package logging builds the service's structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON slog logger. When filePath is set, output goes to a
// size-rotated file; otherwise to stdout.
func New(filePath string) *slog.Logger {
	var w io.Writer = os.Stdout
	if strings.TrimSpace(filePath) != "" {
		w = &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}
