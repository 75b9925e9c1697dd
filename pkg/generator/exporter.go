package generator

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// DefaultPreviewSize is the edge of the on-screen preview.
const DefaultPreviewSize = 300

type Exporter struct {
	OutputDir string
	Now       func() time.Time
}

func NewExporter(outputDir string) *Exporter {
	if outputDir == "" {
		outputDir = "."
	}
	return &Exporter{
		OutputDir: outputDir,
		Now:       time.Now,
	}
}

// Save writes img as a timestamped PNG and returns its path.
func (e *Exporter) Save(img image.Image) (string, error) {
	return e.SaveAs(img, Filename(e.Now()))
}

// SaveAs writes img into the output directory under name. The format follows the extension.
func (e *Exporter) SaveAs(img image.Image, name string) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}
	filePath := filepath.Join(e.OutputDir, name)
	if err := imaging.Save(img, filePath); err != nil {
		return "", fmt.Errorf("failed to save QR code: %v", err)
	}
	return filePath, nil
}

// SavePreview writes a size x size thumbnail of img next to the timestamped file.
func (e *Exporter) SavePreview(img image.Image, size int) (string, error) {
	name := strings.TrimSuffix(Filename(e.Now()), ".png") + "-preview.png"
	return e.SaveAs(Preview(img, size), name)
}

// Preview scales img down for display. Only used on screen, never for scanning.
func Preview(img image.Image, size int) image.Image {
	if size <= 0 {
		size = DefaultPreviewSize
	}
	return resize.Resize(uint(size), uint(size), img, resize.NearestNeighbor)
}

func (e *Exporter) ensureOutputDir() error {
	if _, err := os.Stat(e.OutputDir); os.IsNotExist(err) {
		err = os.MkdirAll(e.OutputDir, os.ModePerm)
		if err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}
	return nil
}
