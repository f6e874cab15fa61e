package repositories

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the store at path and routes badger's own logs to log.
// An empty path opens an in-memory store.
func OpenBadger(path string, log *slog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts.WithLogger(badgerLogger{log: log.With("component", "badger")}))
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	log *slog.Logger
}

var _ badger.Logger = badgerLogger{}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(trim(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(trim(format, args))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(trim(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(trim(format, args))
}

func trim(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
