package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"tokenmap/config"
)

// ErrTokenNotFound means the distribution source confirmed the token does not
// exist (or returned a payload we cannot use). Not retriable. Every other
// error out of BubblemapsClient is a transport-level failure that a later
// request may retry.
var ErrTokenNotFound = errors.New("token not found")

// BubblemapsClient fetches the holder graph for a token. Two dependent
// lookups against the same source: metadata first, then the full map data
// only when metadata reports OK.
type BubblemapsClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func NewBubblemapsClient(cfg config.Config, log zerolog.Logger) *BubblemapsClient {
	settings := gobreaker.Settings{Name: "bubblemaps"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &BubblemapsClient{
		baseURL: cfg.BubblemapsAPIURL,
		http:    &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log.With().Str("client", "bubblemaps").Logger(),
	}
}

// Fetch returns the distribution snapshot for (address, chain), or
// ErrTokenNotFound, or a transient error.
func (c *BubblemapsClient) Fetch(ctx context.Context, address string, chain Chain) (*DistributionSnapshot, error) {
	var metadata mapMetadataResponse
	metadataURL := fmt.Sprintf("%s/map-metadata?token=%s&chain=%s", c.baseURL, address, chain)
	if err := c.getJSON(ctx, metadataURL, &metadata); err != nil {
		return nil, err
	}
	if metadata.Status != statusOK {
		c.log.Debug().Str("status", metadata.Status).Str("address", address).Msg("metadata lookup rejected")
		return nil, errors.Wrapf(ErrTokenNotFound, "metadata status %q", metadata.Status)
	}

	var mapData mapDataResponse
	dataURL := fmt.Sprintf("%s/map-data?token=%s&chain=%s", c.baseURL, address, chain)
	if err := c.getJSON(ctx, dataURL, &mapData); err != nil {
		return nil, err
	}
	if mapData.Status != statusOK {
		return nil, errors.Wrapf(ErrTokenNotFound, "map data status %q", mapData.Status)
	}
	if len(mapData.Nodes) == 0 {
		return nil, errors.Wrap(ErrTokenNotFound, "empty holder list")
	}

	holders := make([]Holder, 0, len(mapData.Nodes))
	for _, node := range mapData.Nodes {
		name := node.Name
		if name == "" {
			name = "Unknown"
		}
		holders = append(holders, Holder{
			Address:    node.Address,
			Percentage: node.Percentage,
			Amount:     node.Amount,
			IsContract: node.IsContract,
			Name:       name,
		})
	}

	var flow float64
	for _, link := range mapData.Links {
		flow += link.Forward + link.Backward
	}

	snapshot := &DistributionSnapshot{
		Symbol:            mapData.Symbol,
		FullName:          mapData.FullName,
		IsNFT:             mapData.IsNFT,
		Holders:           holders,
		TotalFlow:         decimal.NewFromFloat(flow),
		CEXHolderPct:      metadata.IdentifiedSupply.PercentInCEXs,
		ContractHolderPct: metadata.IdentifiedSupply.PercentInContracts,
	}
	if ts, err := time.Parse(time.RFC3339, metadata.DtUpdate); err == nil {
		snapshot.LastUpdate = &ts
	}

	c.log.Debug().
		Str("address", address).
		Str("chain", string(chain)).
		Int("holders", len(holders)).
		Msg("distribution snapshot fetched")

	return snapshot, nil
}

func (c *BubblemapsClient) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit wait")
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		return c.http.Do(req)
	})
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("bubblemaps request failed")
		return errors.Wrap(err, "failure calling bubblemaps")
	}

	resp := res.(*http.Response)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrTokenNotFound, "response status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failure reading response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(ErrTokenNotFound, "malformed payload")
	}
	return nil
}
