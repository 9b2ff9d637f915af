// Package logcollector subscribes to every telemetry envelope crossing the
// broker and appends it to a rotated log file per source service. It is
// the Go analogue of hamilton's logging.log_collector.LogCollector, which
// consumes a single shared logging queue and appends plain-text lines to
// one file; this version keys by source so one noisy service's volume
// cannot crowd another's history out of a shared file, and rotates with
// lumberjack rather than growing one file without bound.
package logcollector

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/je9pel/observatory/internal/envelope"
)

// Collector appends every envelope it observes to a per-source, rotated
// log file.
type Collector struct {
	dir string

	mu      sync.Mutex
	writers map[string]*lumberjack.Logger
}

// New creates a Collector writing rotated log files under dir.
func New(dir string) *Collector {
	return &Collector{dir: dir, writers: make(map[string]*lumberjack.Logger)}
}

func (c *Collector) writerFor(source string) *lumberjack.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.writers[source]
	if !ok {
		w = &lumberjack.Logger{
			Filename:   filepath.Join(c.dir, source+".log"),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		c.writers[source] = w
	}
	return w
}

// Handle appends one envelope's rendering to its source's log file,
// mirroring on_log_received's timestamp-service-level-message line shape.
func (c *Collector) Handle(ctx context.Context, env *envelope.Envelope) error {
	w := c.writerFor(env.Source)
	line := fmt.Sprintf("%s - %s - %s - %s\n",
		env.Timestamp.Format("2006-01-02 15:04:05"), env.Source, env.MessageType, env.Kind)
	if _, err := w.Write([]byte(line)); err != nil {
		return fmt.Errorf("logcollector: writing log for %s: %w", env.Source, err)
	}
	return nil
}

// Close flushes and closes every open per-source log file.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, w := range c.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
