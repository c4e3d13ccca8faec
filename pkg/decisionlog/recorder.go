package decisionlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultBuffer is the default size of the async write channel.
const DefaultBuffer = 1000

// writeTimeout bounds each storage write made by the worker.
const writeTimeout = 5 * time.Second

// Recorder writes decision records asynchronously so the request path never
// blocks on storage. When the buffer is full, records are dropped and
// counted rather than applying backpressure.
type Recorder struct {
	store   *Store
	records chan *Record
	dropped atomic.Int64
	wg      sync.WaitGroup
	logger  *slog.Logger

	closeOnce sync.Once
}

// NewRecorder creates a recorder draining into the given store. buffer <= 0
// selects DefaultBuffer.
func NewRecorder(store *Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	r := &Recorder{
		store:   store,
		records: make(chan *Record, buffer),
		logger:  slog.Default().With("component", "decisionlog.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("decision recorder started", "buffer", buffer)
	return r
}

// Record enqueues a record for async writing. A missing ID or timestamp is
// filled in. Returns immediately; drops the record when the buffer is full.
func (r *Recorder) Record(record *Record) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	select {
	case r.records <- record:
	default:
		dropped := r.dropped.Add(1)
		if dropped%100 == 1 {
			r.logger.Warn("decision log buffer full, dropping records",
				"dropped_total", dropped,
			)
		}
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting records, drains the buffer, and waits for the
// worker to finish.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.records)
		r.wg.Wait()
		r.logger.Info("decision recorder stopped", "dropped_total", r.dropped.Load())
	})
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for record := range r.records {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := r.store.Insert(ctx, record)
		cancel()
		if err != nil {
			r.logger.Error("failed to write decision record",
				"record_id", record.ID,
				"error", err,
			)
		}
	}
}
