package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apiclient "tokenmap/api-client"
	"tokenmap/config"
)

const topHolderCount = 5

type DistributionFetcher interface {
	Fetch(ctx context.Context, address string, chain apiclient.Chain) (*apiclient.DistributionSnapshot, error)
}

type MarketFetcher interface {
	Fetch(ctx context.Context, address string, chain apiclient.Chain) apiclient.MarketSnapshot
}

// Capturer renders the distribution graph for (address, chain) into an image
// file and returns its path. It owns the whole rendering lifecycle and must
// honor ctx cancellation.
type Capturer interface {
	Capture(ctx context.Context, address string, chain apiclient.Chain) (string, error)
}

// Result is the consolidated analysis for one request. Distribution is always
// present; Market fields and ArtifactPath degrade independently.
type Result struct {
	Distribution *apiclient.DistributionSnapshot
	Market       apiclient.MarketSnapshot
	Score        Scorecard
	TopHolders   []apiclient.Holder
	ArtifactPath string
	MapURL       string
}

// Analyzer orchestrates one analysis request: concurrent data fetches, the
// score computation, and supervision of the slow capture step.
type Analyzer struct {
	distribution    DistributionFetcher
	market          MarketFetcher
	capturer        Capturer
	appURL          string
	fetchTimeout    time.Duration
	captureDeadline time.Duration
	log             zerolog.Logger
}

func NewAnalyzer(cfg config.Config, distribution DistributionFetcher, market MarketFetcher, capturer Capturer, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		distribution:    distribution,
		market:          market,
		capturer:        capturer,
		appURL:          cfg.BubblemapsAppURL,
		fetchTimeout:    cfg.FetchTimeout,
		captureDeadline: cfg.CaptureDeadline,
		log:             log.With().Str("component", "analyzer").Logger(),
	}
}

type captureOutcome struct {
	path string
	err  error
}

// Analyze runs the full pipeline for one token. A distribution failure is
// fatal (ErrTokenNotFound or transient, for the caller to classify); market
// and capture failures only degrade the result.
func (a *Analyzer) Analyze(ctx context.Context, address string, chain apiclient.Chain) (*Result, error) {
	// The capture clock starts at dispatch: rendering runs in the background
	// while the data fetches are in flight.
	captureCtx, cancelCapture := context.WithTimeout(ctx, a.captureDeadline)
	defer cancelCapture()

	captureCh := make(chan captureOutcome, 1)
	go func() {
		path, err := a.capturer.Capture(captureCtx, address, chain)
		captureCh <- captureOutcome{path: path, err: err}
	}()

	var (
		distribution *apiclient.DistributionSnapshot
		market       apiclient.MarketSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	fetchCtx, cancelFetch := context.WithTimeout(gctx, a.fetchTimeout)
	defer cancelFetch()

	g.Go(func() error {
		snapshot, err := a.distribution.Fetch(fetchCtx, address, chain)
		if err != nil {
			return err
		}
		distribution = snapshot
		return nil
	})
	g.Go(func() error {
		// Market data degrades, never fails.
		market = a.market.Fetch(fetchCtx, address, chain)
		return nil
	})

	if err := g.Wait(); err != nil {
		cancelCapture()
		a.discardCapture(captureCh)
		return nil, errors.Wrapf(err, "distribution fetch for %s on %s", address, chain)
	}

	scorecard := Score(distribution.Holders, distribution.ContractHolderPct)

	result := &Result{
		Distribution: distribution,
		Market:       market,
		Score:        scorecard,
		TopHolders:   topHolders(distribution.Holders),
		MapURL:       fmt.Sprintf("%s/%s/token/%s", a.appURL, chain, address),
	}

	select {
	case outcome := <-captureCh:
		if outcome.err != nil {
			a.log.Warn().Err(outcome.err).Str("address", address).Msg("capture failed, report goes out without image")
		} else {
			result.ArtifactPath = outcome.path
		}
	case <-captureCtx.Done():
		a.log.Warn().Str("address", address).Dur("deadline", a.captureDeadline).Msg("capture deadline exceeded")
		a.discardCapture(captureCh)
	}

	return result, nil
}

// discardCapture drains an abandoned capture task so a late artifact never
// outlives the request.
func (a *Analyzer) discardCapture(ch <-chan captureOutcome) {
	go func() {
		outcome := <-ch
		if outcome.err == nil && outcome.path != "" {
			if err := os.Remove(outcome.path); err != nil {
				a.log.Warn().Err(err).Str("path", outcome.path).Msg("failed to remove abandoned artifact")
			}
		}
	}()
}

func topHolders(holders []apiclient.Holder) []apiclient.Holder {
	if len(holders) <= topHolderCount {
		return holders
	}
	return holders[:topHolderCount]
}
