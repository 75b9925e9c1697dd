package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/qrlogo/qrlogo/internal/adapters/config"
	"github.com/qrlogo/qrlogo/internal/adapters/storage/history"
	"github.com/qrlogo/qrlogo/internal/domain/common/errorz"
	"github.com/qrlogo/qrlogo/internal/domain/entity"
	"github.com/qrlogo/qrlogo/internal/domain/service"
	"github.com/qrlogo/qrlogo/pkg/generator"
	"github.com/qrlogo/qrlogo/pkg/logger"
	"github.com/qrlogo/qrlogo/pkg/logger/types"
	"github.com/spf13/afero"
)

// App is the command line shell around the QR service: it turns the parsed
// command into a QRRequest and takes care of saving and shutdown.
type App struct {
	Config   *config.Config
	QR       *service.QrService
	Exporter *generator.Exporter
	Logger   *types.Logger
	Out      io.Writer
}

func New(cfg *config.Config, out io.Writer) (*App, error) {
	appLogger, err := logger.Named("app")
	if err != nil {
		return nil, err
	}
	historyLogger, err := logger.Named("history")
	if err != nil {
		return nil, err
	}

	storage := history.NewStorage(afero.NewOsFs(), cfg.HistoryPath, historyLogger)

	return &App{
		Config:   cfg,
		QR:       service.NewQrService(storage, appLogger, cfg.Autosave),
		Exporter: generator.NewExporter(cfg.OutputDir),
		Logger:   appLogger,
		Out:      out,
	}, nil
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	switch a.Config.Command {
	case "make":
		img, err := a.compose(ctx)
		if err != nil {
			return err
		}
		path, err := a.Exporter.Save(img)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.Out, path)
		return err
	case "preview":
		img, err := a.compose(ctx)
		if err != nil {
			return err
		}
		path, err := a.Exporter.SavePreview(img, a.Config.PreviewSize)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.Out, path)
		return err
	case "history":
		for i, p := range a.QR.History() {
			if _, err := fmt.Fprintf(a.Out, "%d\t%s\n", i, p); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q (want make, preview or history)", a.Config.Command)
	}
}

// Close persists the logo history.
func (a *App) Close() error {
	if err := a.QR.Flush(); err != nil {
		return err
	}
	a.Logger.Debug("Logo history saved")
	return nil
}

func (a *App) compose(ctx context.Context) (*image.RGBA, error) {
	req := entity.QRRequest{
		Content:    a.Config.Content,
		LogoPath:   a.Config.LogoPath,
		Foreground: a.Config.Foreground,
		Background: a.Config.Background,
		BaseWidth:  a.Config.BaseWidth,
		LogoScale:  a.Config.LogoScale,
	}

	var (
		img *image.RGBA
		err error
	)
	if a.Config.HistoryIndex >= 0 {
		img, err = a.QR.MakeFromHistory(ctx, req, a.Config.HistoryIndex)
	} else {
		img, err = a.QR.Make(ctx, req)
	}

	if errors.Is(err, errorz.ErrLogoLoad) && a.Config.FallbackToNoLogo {
		a.Logger.Warnf("Using no logo: %v", err)
		req.LogoPath = ""
		return a.QR.Make(ctx, req)
	}
	return img, err
}
