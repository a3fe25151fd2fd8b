package strip

import (
	"errors"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/classify"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/fsutil"
	"go.uber.org/zap"
)

// Operation names strip batches in progress events and logs.
const Operation = "metadataStrip"

// Reasons reported by previews.
const (
	ReasonNoMetadata      = "no metadata"
	ReasonNothingToRemove = "no removable metadata"
)

func storeOf(opts core.BatchOptions) core.Store {
	if opts.Store == nil {
		return fsutil.Disk{}
	}
	return opts.Store
}

// Preview scans every file and reports what a strip with the request's
// policy would remove.
func Preview(req core.StripRequest, opts core.BatchOptions) core.StripPreviewResponse {
	log := opts.Logger()
	st := storeOf(opts)
	p := classify.Resolve(req.Preset, req.Categories)
	resp := core.StripPreviewResponse{Items: make([]core.StripPreviewItem, 0, len(req.Files))}

	for _, path := range req.Files {
		item := previewFile(st, path, p)
		if item.Status == core.PreviewReady {
			resp.Ready++
		} else {
			resp.Skipped++
		}
		log.Debug("strip preview",
			zap.String("path", path),
			zap.String("status", string(item.Status)),
			zap.Int("tags", item.TagsToStrip),
			zap.String("reason", item.Reason))
		resp.Items = append(resp.Items, item)
	}
	resp.Total = resp.Ready + resp.Skipped
	return resp
}

func previewFile(st core.Store, path string, p classify.Policy) core.StripPreviewItem {
	item := core.StripPreviewItem{Path: path, Status: core.PreviewSkipped, FoundCategories: []string{}}
	data, err := st.ReadFile(path)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	r, err := Scan(data, p)
	if err != nil {
		item.Reason = err.Error()
		return item
	}
	if !r.HasMetadata() {
		item.Reason = ReasonNoMetadata
		return item
	}
	item.HasIPTC, item.HasXMP = r.HasIPTC, r.HasXMP

	affected := r.Affected(p)
	if len(affected) == 0 && r.Removable == 0 {
		item.Reason = ReasonNothingToRemove
		return item
	}
	item.FoundCategories = affected
	item.TagsToStrip = r.Removable
	item.Status = core.PreviewReady
	return item
}

// Execute strips every file and replaces it through the store. Files are
// processed in order; a failure never stops the batch, files already
// rewritten stay rewritten, and files left after a cancellation are
// skipped.
func Execute(req core.StripRequest, opts core.BatchOptions) core.StripExecuteResponse {
	log := opts.Logger()
	st := storeOf(opts)
	p := classify.Resolve(req.Preset, req.Categories)
	b := core.NewBatch(Operation, len(req.Files), opts)
	details := make([]core.StripExecuteDetail, 0, len(req.Files))

	for _, path := range req.Files {
		var d core.StripExecuteDetail
		if b.Canceled() {
			d = core.StripExecuteDetail{Path: path, Status: core.StatusSkipped, Reason: core.ReasonCanceled}
		} else {
			d = executeFile(st, path, p, log.With(zap.String("path", path)))
		}
		if d.Status == core.StatusFailed {
			log.Warn("strip failed", zap.String("path", path), zap.String("reason", d.Reason))
		} else {
			log.Debug("strip",
				zap.String("path", path),
				zap.String("status", string(d.Status)),
				zap.Int("tags", d.StrippedTags))
		}
		details = append(details, d)
		b.Record(path, d.Status)
	}
	return core.StripExecuteResponse{Totals: b.Finish(), Details: details}
}

func executeFile(st core.Store, path string, p classify.Policy, log *zap.Logger) core.StripExecuteDetail {
	d := core.StripExecuteDetail{Path: path, Status: core.StatusFailed}
	data, err := st.ReadFile(path)
	if err != nil {
		d.Reason = err.Error()
		return d
	}
	out, res, err := StripJPEG(data, p, log)
	switch {
	case errors.Is(err, core.ErrNoMetadata):
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
	d.StrippedTags = res.StrippedTags
	d.StrippedIPTC = res.StrippedIPTC
	d.StrippedXMP = res.StrippedXMP
	return d
}
