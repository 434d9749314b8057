package exchange

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger allows setting a custom package-level logger. Components that
// take a logger through their Config use that one instead; this default
// only backs construction paths that were given none.
func SetLogger(l *slog.Logger) {
	logger = l
}
