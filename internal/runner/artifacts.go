package runner

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

var artifactPatterns = []string{"*.png", "*.jpg", "*.jpeg"}

// ScanArtifacts sends every image file in the session's workspace that
// has not been transmitted yet. Artifacts are sent at most once per
// path for the session's lifetime; per-file failures are reported to
// the session and do not stop the scan.
func (e *Engine) ScanArtifacts(s *Session) {
	s.mu.Lock()
	dir := s.workspace
	s.mu.Unlock()
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}

	for _, pat := range artifactPatterns {
		matches, _ := filepath.Glob(filepath.Join(dir, pat))
		for _, path := range matches {
			if s.wasSent(path) {
				continue
			}
			e.sendArtifact(s, path)
		}
	}
}

func (e *Engine) sendArtifact(s *Session, path string) {
	if _, err := os.Stat(path); err != nil {
		s.emit(EventSessionError, ErrorPayload{
			Error: fmt.Sprintf("Plot file not found: %s", path),
		})
		return
	}

	data, err := e.encodeArtifact(path)
	if err != nil {
		s.emit(EventSessionError, ErrorPayload{
			Error: fmt.Sprintf("Could not handle plot file %s: %v", path, err),
		})
		return
	}

	s.emit(EventPlotImage, PlotPayload{
		Filename:    filepath.Base(path),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
	})
	s.markSent(path)
}

// encodeArtifact loads an image, bounds it to MaxImageDim on its
// longest side preserving aspect ratio, and re-encodes it as PNG.
// Images already within bounds pass through un-resized.
func (e *Engine) encodeArtifact(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}

	max := e.opts.MaxImageDim
	if b := img.Bounds(); b.Dx() > max || b.Dy() > max {
		img = imaging.Fit(img, max, max, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
