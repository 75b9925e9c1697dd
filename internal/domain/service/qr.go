package service

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/qrlogo/qrlogo/internal/domain/common/errorz"
	"github.com/qrlogo/qrlogo/internal/domain/entity"
	"github.com/qrlogo/qrlogo/pkg/logger/types"
	qr "github.com/qrlogo/qrlogo/pkg/qrcode"
)

type qrHistoryStorage interface {
	Load() entity.LogoHistory
	RecordUse(path string)
	List() entity.LogoHistory
	Save() error
}

type QrService struct {
	mu       sync.Mutex
	history  qrHistoryStorage
	logger   *types.Logger
	autosave bool
}

func NewQrService(history qrHistoryStorage, logger *types.Logger, autosave bool) *QrService {
	if logger == nil {
		logger = types.Nop()
	}
	history.Load()
	return &QrService{
		history:  history,
		logger:   logger,
		autosave: autosave,
	}
}

// Make composes the requested QR code. A successful composition with a logo moves
// that logo to the front of the history; failures leave the history untouched.
func (s *QrService) Make(ctx context.Context, req entity.QRRequest) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := qr.Config{
		Content:    req.Content,
		LogoPath:   req.LogoPath,
		Foreground: req.Foreground,
		Background: req.Background,
		BaseWidth:  req.BaseWidth,
		LogoScale:  req.LogoScale,
	}
	img, err := cfg.Generate()
	if err != nil {
		return nil, err
	}
	// composing a large raster is not interruptible; drop the result if the caller gave up meanwhile
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if req.Content == "" || req.LogoPath == "" {
		return img, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.RecordUse(req.LogoPath)
	if s.autosave {
		if err = s.history.Save(); err != nil {
			// the image is fine, only the convenience list was not persisted
			s.logger.Errorf("Failed to save logo history: %v", err)
		}
	}
	return img, nil
}

// MakeFromHistory composes req using the history entry at index as the logo.
func (s *QrService) MakeFromHistory(ctx context.Context, req entity.QRRequest, index int) (*image.RGBA, error) {
	list := s.History()
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errorz.ErrHistoryIndex, index, len(list))
	}
	req.LogoPath = list[index]
	return s.Make(ctx, req)
}

// History returns a read-only snapshot of the logo history.
func (s *QrService) History() entity.LogoHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List()
}

// Flush persists the history; called on shutdown.
func (s *QrService) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Save()
}
