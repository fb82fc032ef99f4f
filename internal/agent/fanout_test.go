package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// fakeBackend returns canned listings and records the filter it got
type fakeBackend struct {
	name     string
	retailer vehicle.RetailerID
	listings []models.Listing
	err      error
	block    bool

	mu     sync.Mutex
	filter *vehicle.RetailerFilter
}

func (f *fakeBackend) Name() string                 { return f.name }
func (f *fakeBackend) Retailer() vehicle.RetailerID { return f.retailer }

func (f *fakeBackend) Extract(ctx context.Context, _ string, filter *vehicle.RetailerFilter) ([]models.Listing, error) {
	f.mu.Lock()
	f.filter = filter
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.listings, f.err
}

func lst(url string, price float64) models.Listing {
	return models.Listing{Name: url, URL: url, Price: models.Number(price)}
}

func TestRunner_StartDelay(t *testing.T) {
	r := NewRunner(nil, time.Second, 500*time.Millisecond, 0)
	r.rand = func(n int64) int64 { return n - 1 }

	assert.Equal(t, 500*time.Millisecond-1, r.startDelay(0))
	assert.Equal(t, 2*time.Second+500*time.Millisecond-1, r.startDelay(2))

	r.rand = func(int64) int64 { return 0 }
	assert.Equal(t, 3*time.Second, r.startDelay(3))

	r = NewRunner(nil, 0, 0, 0)
	assert.Zero(t, r.startDelay(4))
	assert.Equal(t, DefaultJobTimeout, r.timeout)
}

func TestRunner_Run(t *testing.T) {
	carmax := &fakeBackend{name: "carmax", retailer: vehicle.RetailerCarmax, listings: []models.Listing{
		lst("https://www.carmax.com/car/2", 61990),
		lst("https://www.carmax.com/car/1", 45990),
		lst("https://www.carmax.com/car/1", 45990),
	}}
	truecar := &fakeBackend{name: "truecar", retailer: vehicle.RetailerTruecar, listings: []models.Listing{
		lst("https://www.truecar.com/listing/9", 0),
		lst("https://www.truecar.com/listing/3", 50000),
	}}
	autotrader := &fakeBackend{name: "autotrader", retailer: vehicle.RetailerAutotrader, err: errors.New("navigation timeout")}

	compiled := &vehicle.RetailerFilter{URL: "https://www.carmax.com/cars/gmc/sierra-3500"}
	search := Search{
		JobID: 7,
		Query: "gmc sierra",
		RetailerFilters: &vehicle.FilterBundle{Retailers: map[string]*vehicle.RetailerFilter{
			"carmax": compiled,
		}},
	}

	out := NewRunner([]Backend{carmax, truecar, autotrader}, 0, 0, time.Second).Run(context.Background(), search)

	assert.Equal(t, []string{"carmax", "truecar"}, out.Succeeded)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "autotrader: navigation timeout", out.Errors[0].Error())

	urls := make([]string, 0, len(out.Listings))
	for _, l := range out.Listings {
		urls = append(urls, l.URL)
	}
	assert.Equal(t, []string{
		"https://www.carmax.com/car/1",
		"https://www.truecar.com/listing/3",
		"https://www.carmax.com/car/2",
		"https://www.truecar.com/listing/9",
	}, urls, "deduplicated and sorted by price, unpriced last")
	assert.Equal(t, "truecar", out.Listings[1].Retailer)

	assert.Same(t, compiled, carmax.filter)
	require.NotNil(t, truecar.filter)
	assert.True(t, truecar.filter.FreeText)
	assert.Equal(t, "gmc sierra", truecar.filter.Filters["query"])

	req := out.Callback(7, "w1")
	assert.Equal(t, types.CallbackSuccess, req.Status)
	assert.Equal(t, "w1", req.WorkerID)
	assert.Empty(t, req.Scraper)
	assert.Len(t, req.Data, 4)
}

func TestRunner_Timeout(t *testing.T) {
	slow := &fakeBackend{name: "carvana", retailer: vehicle.RetailerCarvana, block: true}
	late := &fakeBackend{name: "cargurus", retailer: vehicle.RetailerCargurus}

	r := NewRunner([]Backend{slow, late}, time.Hour, 0, 50*time.Millisecond)
	start := time.Now()
	out := r.Run(context.Background(), Search{JobID: 1, Query: "q"})
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Empty(t, out.Succeeded)
	require.Len(t, out.Errors, 2)

	req := out.Callback(1, "")
	assert.Equal(t, types.CallbackError, req.Status)
	assert.Nil(t, req.Data)
	assert.Contains(t, req.Error, "carvana: context deadline exceeded")
	assert.Contains(t, req.Error, "cargurus: not started")
}

func TestOutcome_Callback(t *testing.T) {
	req := Outcome{Succeeded: []string{"carmax"}}.Callback(3, "")
	assert.Equal(t, types.CallbackSuccess, req.Status)
	assert.Equal(t, "carmax", req.Scraper)
	assert.NotNil(t, req.Data, "an empty search is still a success")

	req = Outcome{}.Callback(3, "")
	assert.Equal(t, types.CallbackError, req.Status)
	assert.Equal(t, "no backend could run", req.Error)
}
