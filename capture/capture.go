// Package capture renders a token's bubble map in headless Chrome and
// screenshots it. It is the slow, unreliable collaborator of the pipeline:
// callers bound it with a context deadline and must tolerate failure.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apiclient "tokenmap/api-client"
	"tokenmap/config"
)

// settleDelay gives the canvas animation time to finish after the element
// appears; screenshotting earlier yields a half-drawn map.
const settleDelay = 5 * time.Second

const canvasSelector = ".bubblemaps-canvas"

type Service struct {
	appURL   string
	dir      string
	headless bool
	log      zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		appURL:   cfg.BubblemapsAppURL,
		dir:      cfg.ArtifactDir,
		headless: cfg.Headless,
		log:      log.With().Str("component", "capture").Logger(),
	}
}

// Capture loads the public map page for (address, chain) and writes a
// screenshot to a uniquely named file. The browser is torn down on every
// path, consumed or not. The returned file is the caller's to delete.
func (s *Service) Capture(ctx context.Context, address string, chain apiclient.Chain) (string, error) {
	l := launcher.New().Headless(s.headless).NoSandbox(true)
	controlURL, err := l.Launch()
	if err != nil {
		return "", errors.Wrap(err, "failure launching browser")
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", errors.Wrap(err, "failure connecting to browser")
	}
	defer browser.Close()

	pageURL := fmt.Sprintf("%s/%s/token/%s", s.appURL, chain, address)
	s.log.Info().Str("url", pageURL).Msg("loading map page")

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", errors.Wrap(err, "failure opening page")
	}
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		return "", errors.Wrap(err, "failure setting viewport")
	}

	if err := page.WaitLoad(); err != nil {
		return "", errors.Wrap(err, "failure waiting for page load")
	}
	if _, err := page.Element(canvasSelector); err != nil {
		return "", errors.Wrap(err, "map canvas never appeared")
	}

	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "capture cancelled while settling")
	}

	data, err := page.Screenshot(false, nil)
	if err != nil {
		return "", errors.Wrap(err, "failure taking screenshot")
	}

	// The nonce keeps concurrent requests for one address from colliding.
	path := filepath.Join(s.dir, fmt.Sprintf("bubblemap_%s_%s.png", address, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failure writing artifact")
	}

	s.log.Info().Str("path", path).Msg("screenshot saved")
	return path, nil
}
