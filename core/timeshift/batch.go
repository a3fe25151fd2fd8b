package timeshift

import (
	"errors"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/fsutil"
	"go.uber.org/zap"
)

// Operation names datetime shift batches in progress events and logs.
const Operation = "exifOffset"

func storeOf(opts core.BatchOptions) core.Store {
	if opts.Store == nil {
		return fsutil.Disk{}
	}
	return opts.Store
}

// Preview reports, for every file, the primary capture datetime and its
// shifted value without touching the file.
func Preview(req core.ShiftRequest, opts core.BatchOptions) core.ShiftPreviewResponse {
	log := opts.Logger()
	st := storeOf(opts)
	resp := core.ShiftPreviewResponse{Items: make([]core.ShiftPreviewItem, 0, len(req.Files))}

	for _, path := range req.Files {
		item := previewFile(st, path, req.OffsetSeconds)
		if item.Status == core.PreviewReady {
			resp.Ready++
		} else {
			resp.Skipped++
		}
		log.Debug("shift preview",
			zap.String("path", path),
			zap.String("status", string(item.Status)),
			zap.String("reason", item.Reason))
		resp.Items = append(resp.Items, item)
	}
	resp.Total = resp.Ready + resp.Skipped
	return resp
}

func previewFile(st core.Store, path string, offset int64) core.ShiftPreviewItem {
	item := core.ShiftPreviewItem{Path: path, Status: core.PreviewSkipped}
	data, err := st.ReadFile(path)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	orig, err := ReadPrimary(data)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	item.OriginalDatetime = orig
	shifted, ok := ApplyOffset(orig, offset)
	if !ok {
		item.Reason = ErrOutOfRange.Error()
		return item
	}
	item.CorrectedDatetime = shifted
	item.Status = core.PreviewReady
	return item
}

// Execute shifts every datetime field of each file and replaces the file
// through the store. Files are processed in order; a failure never stops
// the batch, and files left after a cancellation are skipped.
func Execute(req core.ShiftRequest, opts core.BatchOptions) core.ShiftExecuteResponse {
	log := opts.Logger()
	st := storeOf(opts)
	b := core.NewBatch(Operation, len(req.Files), opts)
	details := make([]core.ShiftExecuteDetail, 0, len(req.Files))

	for _, path := range req.Files {
		var d core.ShiftExecuteDetail
		if b.Canceled() {
			d = core.ShiftExecuteDetail{Path: path, Status: core.StatusSkipped, Reason: core.ReasonCanceled}
		} else {
			d = executeFile(st, path, req.OffsetSeconds, log)
		}
		if d.Status == core.StatusFailed {
			log.Warn("shift failed", zap.String("path", path), zap.String("reason", d.Reason))
		} else {
			log.Debug("shift", zap.String("path", path), zap.String("status", string(d.Status)), zap.String("reason", d.Reason))
		}
		details = append(details, d)
		b.Record(path, d.Status)
	}
	return core.ShiftExecuteResponse{Totals: b.Finish(), Details: details}
}

func executeFile(st core.Store, path string, offset int64, log *zap.Logger) core.ShiftExecuteDetail {
	d := core.ShiftExecuteDetail{Path: path, Status: core.StatusFailed}
	data, err := st.ReadFile(path)
	if err != nil {
		d.Reason = err.Error()
		return d
	}

	orig, err := ReadPrimary(data)
	switch {
	case errors.Is(err, core.ErrNotJPEG):
		d.Reason = err.Error()
		return d
	case err != nil:
		d.Status, d.Reason = core.StatusSkipped, err.Error()
		return d
	}
	shifted, ok := ApplyOffset(orig, offset)
	if !ok {
		d.Status, d.Reason = core.StatusSkipped, ErrOutOfRange.Error()
		return d
	}

	out, n, err := PatchJPEG(data, offset, log.With(zap.String("path", path)))
	switch {
	case errors.Is(err, ErrNothingPatched):
		d.Status, d.Reason = core.StatusSkipped, err.Error()
		return d
	case err != nil:
		d.Reason = err.Error()
		return d
	}
	if err := st.WriteFile(path, out); err != nil {
		d.Reason = err.Error()
		return d
	}
	d.Status = core.StatusSucceeded
	d.PatchedFields = n
	d.Reason = orig + " → " + shifted
	return d
}
