package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenmap/config"
)

const metadataPayload = `{
	"status": "OK",
	"dt_update": "2024-03-01T12:30:00Z",
	"identified_supply": {
		"percent_in_cexs": 12.5,
		"percent_in_contracts": 30.2
	}
}`

const mapDataPayload = `{
	"status": "OK",
	"full_name": "Test Token",
	"symbol": "TKN",
	"is_X721": false,
	"nodes": [
		{"address": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "amount": 6000000, "is_contract": true, "name": "Uniswap V2", "percentage": 60},
		{"address": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "amount": 2000000, "is_contract": false, "percentage": 20},
		{"address": "0xcccccccccccccccccccccccccccccccccccccccc", "amount": 1000000, "is_contract": false, "percentage": 10}
	],
	"links": [
		{"forward": 100, "backward": 50},
		{"forward": 25, "backward": 0}
	]
}`

func bubblemapsServer(t *testing.T, metadataBody, dataBody string, status int) (*httptest.Server, *int64) {
	t.Helper()
	var dataCalls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		switch r.URL.Path {
		case "/map-metadata":
			fmt.Fprint(w, metadataBody)
		case "/map-data":
			atomic.AddInt64(&dataCalls, 1)
			fmt.Fprint(w, dataBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &dataCalls
}

func bubblemapsClient(baseURL string) *BubblemapsClient {
	cfg := config.Default()
	cfg.BubblemapsAPIURL = baseURL
	return NewBubblemapsClient(cfg, zerolog.Nop())
}

func TestBubblemapsFetch(t *testing.T) {
	srv, _ := bubblemapsServer(t, metadataPayload, mapDataPayload, http.StatusOK)
	client := bubblemapsClient(srv.URL)

	snapshot, err := client.Fetch(context.Background(), "0xabc", ETH)
	require.NoError(t, err)

	assert.Equal(t, "Test Token", snapshot.FullName)
	assert.Equal(t, "TKN", snapshot.Symbol)
	assert.False(t, snapshot.IsNFT)

	require.Len(t, snapshot.Holders, 3)
	assert.Equal(t, "Uniswap V2", snapshot.Holders[0].Name)
	assert.True(t, snapshot.Holders[0].IsContract)
	assert.Equal(t, 60.0, snapshot.Holders[0].Percentage)
	assert.Equal(t, "Unknown", snapshot.Holders[1].Name, "absent name defaults to Unknown")

	assert.Equal(t, "175", snapshot.TotalFlow.String(), "flow sums forward and backward volumes")

	require.NotNil(t, snapshot.CEXHolderPct)
	assert.Equal(t, 12.5, *snapshot.CEXHolderPct)
	require.NotNil(t, snapshot.ContractHolderPct)
	assert.Equal(t, 30.2, *snapshot.ContractHolderPct)

	require.NotNil(t, snapshot.LastUpdate)
	assert.Equal(t, "2024-03-01 12:30 UTC", snapshot.LastUpdate.UTC().Format("2006-01-02 15:04 UTC"))
}

func TestBubblemapsFetchMetadataRejected(t *testing.T) {
	srv, dataCalls := bubblemapsServer(t, `{"status": "KO", "message": "token not computed"}`, mapDataPayload, http.StatusOK)
	client := bubblemapsClient(srv.URL)

	_, err := client.Fetch(context.Background(), "0xabc", ETH)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenNotFound))
	assert.EqualValues(t, 0, atomic.LoadInt64(dataCalls), "map data lookup only happens after a metadata OK")
}

func TestBubblemapsFetchErrorStatusCode(t *testing.T) {
	srv, _ := bubblemapsServer(t, metadataPayload, mapDataPayload, http.StatusInternalServerError)
	client := bubblemapsClient(srv.URL)

	_, err := client.Fetch(context.Background(), "0xabc", ETH)
	assert.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestBubblemapsFetchMalformedPayload(t *testing.T) {
	srv, _ := bubblemapsServer(t, `not json at all`, mapDataPayload, http.StatusOK)
	client := bubblemapsClient(srv.URL)

	_, err := client.Fetch(context.Background(), "0xabc", ETH)
	assert.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestBubblemapsFetchEmptyHolderList(t *testing.T) {
	srv, _ := bubblemapsServer(t, metadataPayload, `{"status": "OK", "nodes": [], "links": []}`, http.StatusOK)
	client := bubblemapsClient(srv.URL)

	_, err := client.Fetch(context.Background(), "0xabc", ETH)
	assert.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestBubblemapsFetchConnectionErrorIsTransient(t *testing.T) {
	srv, _ := bubblemapsServer(t, metadataPayload, mapDataPayload, http.StatusOK)
	baseURL := srv.URL
	srv.Close()

	client := bubblemapsClient(baseURL)

	_, err := client.Fetch(context.Background(), "0xabc", ETH)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTokenNotFound), "transport failures are retriable, not NotFound")
}
