package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/clm-workflow/internal/model"
)

// Writer persists a single audit entry.
type Writer interface {
	Insert(ctx context.Context, entry model.AuditEntry) error
}

// Recorder buffers audit entries and writes them from a background
// goroutine. Record never blocks and never returns an error: when the
// buffer is full or a write fails, the entry is logged and dropped. Audit
// latency or failure must not affect workflow correctness.
type Recorder struct {
	writer  Writer
	log     zerolog.Logger
	entries chan model.AuditEntry
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

const writeTimeout = 5 * time.Second

func NewRecorder(writer Writer, log zerolog.Logger, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &Recorder{
		writer:  writer,
		log:     log,
		entries: make(chan model.AuditEntry, bufferSize),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

func (r *Recorder) Record(entry model.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logDropped(entry, "recorder closed")
		return
	}

	select {
	case r.entries <- entry:
	default:
		r.logDropped(entry, "buffer full")
	}
}

// Close stops accepting entries and flushes what is already buffered.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.entries)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.writer.Insert(ctx, entry); err != nil {
			r.log.Error().
				Err(err).
				Str("action", entry.Action).
				Str("target_id", entry.TargetID.String()).
				Msg("audit write failed, entry dropped")
		}
		cancel()
	}
}

func (r *Recorder) logDropped(entry model.AuditEntry, reason string) {
	r.log.Warn().
		Str("action", entry.Action).
		Str("target_id", entry.TargetID.String()).
		Str("reason", reason).
		Msg("audit entry dropped")
}
