package jhu

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-trend-report/internal/config"
	"github.com/couchcryptid/covid-trend-report/internal/observability"
)

const casesCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Testland,0,0,0,5
North,Testland,1,1,2,3
`

const lookupCSV = `UID,iso2,Province_State,Country_Region,Lat,Long_,Combined_Key,Population
1,TL,,Testland,0,0,Testland,1000
2,TL,North,Testland,1,1,"North, Testland",250
`

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	cfg := &config.Config{
		CasesURL:     url + "/cases.csv",
		DeathsURL:    url + "/deaths.csv",
		LookupURL:    url + "/lookup.csv",
		FetchTimeout: 5 * time.Second,
		FetchRetries: retries,
	}
	return NewClient(cfg, slog.Default(), observability.NewMetricsForTesting())
}

func TestClient_FetchCases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cases.csv", r.URL.Path)
		w.Write([]byte(casesCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	table, err := c.FetchCases(context.Background())
	require.NoError(t, err)

	assert.Len(t, table.Dates, 2)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Testland", table.Rows[0].Country)
	assert.Equal(t, []int{2, 3}, table.Rows[1].Values)
}

func TestClient_FetchLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lookupCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	locations, err := c.FetchLookup(context.Background())
	require.NoError(t, err)

	require.Len(t, locations, 2)
	assert.Equal(t, 1000.0, locations[0].Population)
	assert.Equal(t, "North", locations[1].Province)
}

func TestClient_FetchCases_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.FetchCases(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestClient_FetchCases_MalformedSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("UID,Population\n1,50\n")) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.FetchCases(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cases table")
}

func TestClient_FetchCases_RetriesThenSucceeds(t *testing.T) {
	fake := clockwork.NewFakeClock()
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(casesCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)

	done := make(chan error, 1)
	go func() {
		_, err := c.FetchCases(context.Background())
		done <- err
	}()

	// Release the two backoff sleeps (200ms then 400ms).
	for i := 0; i < 2; i++ {
		fake.BlockUntil(1)
		fake.Advance(time.Second)
	}

	require.NoError(t, <-done)
	assert.Equal(t, int64(3), calls.Load())
}

func TestClient_FetchCases_ContextCancelledDuringBackoff(t *testing.T) {
	fake := clockwork.NewFakeClock()
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.FetchCases(ctx)
		done <- err
	}()

	fake.BlockUntil(1)
	cancel()

	require.Error(t, <-done)
}
