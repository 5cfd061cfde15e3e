package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/storage"
)

// ExportLink points to an uploaded export document.
type ExportLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService uploads export documents to object storage and hands out
// presigned download links.
type ExportService struct {
	storage storage.Storage
	expiry  time.Duration
	now     func() time.Time
}

func NewExportService(storage storage.Storage, expiry time.Duration) *ExportService {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &ExportService{storage: storage, expiry: expiry, now: time.Now}
}

func (s *ExportService) Upload(ctx context.Context, export *model.EntryExport) (*ExportLink, error) {
	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("exports/%s/%s.json", export.UserID, now.Format("20060102T150405Z"))

	err = s.storage.Save(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	url, err := s.storage.PresignedURL(ctx, key, s.expiry)
	if err != nil {
		delErr := s.storage.Delete(ctx, key)
		if delErr != nil {
			slog.Error("failed to delete export after presign failure", "error", delErr, "key", key)
		}
		return nil, err
	}

	slog.Info("export uploaded", "user_id", export.UserID, "entries", export.Count, "key", key)
	return &ExportLink{URL: url, ExpiresAt: now.Add(s.expiry)}, nil
}
