package core

import (
	"go.uber.org/zap"
)

// Store reads whole files and replaces them atomically.
type Store interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// Progress is reported after every file of a batch and once more when the
// batch is done.
type Progress struct {
	Operation   string `json:"operation"`
	Processed   int    `json:"processed"`
	Total       int    `json:"total"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	CurrentPath string `json:"currentPath,omitempty"`
	Done        bool   `json:"done"`
	Canceled    bool   `json:"canceled"`
}

// BatchOptions carries the collaborators of a batch run. Every field is
// optional.
type BatchOptions struct {
	Log      *zap.Logger
	Store    Store
	Canceled func() bool
	Progress func(Progress)
}

// Logger returns the configured logger or a no-op one.
func (o BatchOptions) Logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Batch counts verdicts of a sequential run and forwards progress.
type Batch struct {
	Totals
	op       string
	total    int
	canceled bool
	opts     BatchOptions
}

// NewBatch starts counting a run of total files.
func NewBatch(op string, total int, opts BatchOptions) *Batch {
	return &Batch{op: op, total: total, opts: opts}
}

// Canceled polls the cancellation predicate. Once it has fired, it stays
// fired for the remainder of the batch.
func (b *Batch) Canceled() bool {
	if !b.canceled && b.opts.Canceled != nil && b.opts.Canceled() {
		b.canceled = true
		b.opts.Logger().Info("batch canceled",
			zap.String("operation", b.op),
			zap.Int("processed", b.Processed),
			zap.Int("total", b.total))
	}
	return b.canceled
}

// Record counts one verdict and reports progress.
func (b *Batch) Record(path string, s ExecuteStatus) {
	switch s {
	case StatusSucceeded:
		b.Succeeded++
	case StatusFailed:
		b.Failed++
	default:
		b.Skipped++
	}
	b.Processed++
	b.report(path, false)
}

// Finish reports the final progress event and logs the totals.
func (b *Batch) Finish() Totals {
	b.report("", true)
	b.opts.Logger().Info("batch finished",
		zap.String("operation", b.op),
		zap.Int("processed", b.Processed),
		zap.Int("succeeded", b.Succeeded),
		zap.Int("failed", b.Failed),
		zap.Int("skipped", b.Skipped),
		zap.Bool("canceled", b.canceled))
	return b.Totals
}

func (b *Batch) report(path string, done bool) {
	if b.opts.Progress == nil {
		return
	}
	b.opts.Progress(Progress{
		Operation:   b.op,
		Processed:   b.Processed,
		Total:       b.total,
		Succeeded:   b.Succeeded,
		Failed:      b.Failed,
		Skipped:     b.Skipped,
		CurrentPath: path,
		Done:        done,
		Canceled:    b.canceled,
	})
}
