package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
	"go.uber.org/zap"
)

type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ExportService snapshots the whole table as CSV in the flat row layout.
type ExportService struct {
	store    store.Store
	uploader ObjectUploader
	codec    store.Codec
	prefix   string
	now      func() time.Time
	log      *zap.Logger
}

func NewExportService(st store.Store, uploader ObjectUploader, codec store.Codec, prefix string, log *zap.Logger) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{store: st, uploader: uploader, codec: codec, prefix: prefix, now: time.Now, log: log}
}

type ExportResult struct {
	URI  string `json:"uri"`
	Key  string `json:"key"`
	Rows int    `json:"rows"`
}

// Render writes the header and one row per entry.
func (x *ExportService) Render(ctx context.Context) ([]byte, int, error) {
	entries, err := x.store.ListEntries(ctx)
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(store.Columns); err != nil {
		return nil, 0, err
	}
	for _, e := range entries {
		if err := w.Write(x.codec.EncodeRow(e)); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(entries), nil
}

func (x *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	data, rows, err := x.Render(ctx)
	if err != nil {
		return nil, err
	}

	loc := x.codec.Loc
	if loc == nil {
		loc = time.UTC
	}
	key := path.Join(x.prefix, fmt.Sprintf("meals-%s.csv", x.now().In(loc).Format("20060102T150405")))

	uri, err := x.uploader.Upload(ctx, key, "text/csv", data)
	if err != nil {
		x.log.Error("export upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	x.log.Info("snapshot exported", zap.String("uri", uri), zap.Int("rows", rows))
	return &ExportResult{URI: uri, Key: key, Rows: rows}, nil
}
