package capability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

const agmarknetPage = `<html><body>
<table id="cphBody_GridPriceData">
<tr><th>Sl no.</th><th>District Name</th><th>Market Name</th><th>Commodity</th><th>Variety</th><th>Grade</th><th>Min Price (Rs./Quintal)</th><th>Max Price (Rs./Quintal)</th><th>Modal Price (Rs./Quintal)</th><th>Price Date</th></tr>
<tr><td>1</td><td>Bangalore</td><td>Binny Mill</td><td>Tomato</td><td>Local</td><td>FAQ</td><td>3,000</td><td>3,600</td><td>3,400</td><td>01 Mar 2026</td></tr>
</table>
</body></html>`

func TestMarketClientScrapesModalPrice(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, agmarknetPage)
	}))
	t.Cleanup(server.Close)

	client := NewMarketClient(
		AgmarknetConfig{BaseURL: server.URL},
		WithMarketHTTPClient(server.Client()),
		WithMarketClock(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }),
	)

	res, err := client.Prices(context.Background(), contractx.MarketRequest{Commodity: "tomato", Location: "Karnataka"})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if res.Status != contractx.StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if res.ModalPrice != 3400 {
		t.Fatalf("modal price = %d, want 3400", res.ModalPrice)
	}
	if res.Market != "Binny Mill" {
		t.Fatalf("market = %q, want scraped market name", res.Market)
	}
	if res.LastWeekPrice != 2950 {
		t.Fatalf("last week = %d, want reference 2950", res.LastWeekPrice)
	}
	if res.TrendPct <= 0 {
		t.Fatalf("trend = %f, want positive", res.TrendPct)
	}

	if got := gotQuery["Tx_CommodityHead"]; len(got) != 1 || got[0] != "Tomato" {
		t.Fatalf("commodity head = %v", got)
	}
	if got := gotQuery["DateFrom"]; len(got) != 1 || got[0] != "01-Mar-2026" {
		t.Fatalf("date from = %v", got)
	}
}

func TestMarketClientFallsBackToReferenceTable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewMarketClient(
		AgmarknetConfig{BaseURL: server.URL},
		WithMarketHTTPClient(server.Client()),
	)

	res, err := client.Prices(context.Background(), contractx.MarketRequest{Commodity: "onion", Location: "Karnataka"})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if res.ModalPrice != 1800 {
		t.Fatalf("modal price = %d, want reference 1800", res.ModalPrice)
	}
	if res.Market != "Karnataka mandi" {
		t.Fatalf("market = %q", res.Market)
	}
	if res.TrendPct >= 0 {
		t.Fatalf("trend = %f, want negative for onion", res.TrendPct)
	}
}

func TestMarketClientUnknownCommodity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewMarketClient(
		AgmarknetConfig{BaseURL: server.URL},
		WithMarketHTTPClient(server.Client()),
	)

	res, err := client.Prices(context.Background(), contractx.MarketRequest{Commodity: "saffron", Location: "Karnataka"})
	if !errors.Is(err, contractx.ErrCapability) {
		t.Fatalf("error = %v, want ErrCapability", err)
	}
	if res.Status != contractx.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
}

func TestMarketClientEmptyCommodity(t *testing.T) {
	t.Parallel()

	client := NewMarketClient(AgmarknetConfig{})
	if _, err := client.Prices(context.Background(), contractx.MarketRequest{}); !errors.Is(err, contractx.ErrCapability) {
		t.Fatalf("error = %v, want ErrCapability", err)
	}
}

func TestSellingRecommendation(t *testing.T) {
	t.Parallel()

	if got := sellingRecommendation(8); got != "Prices are up, a good time to sell." {
		t.Fatalf("trend +8 = %q", got)
	}
	if got := sellingRecommendation(-6); got != "Prices have dipped, consider waiting a few days." {
		t.Fatalf("trend -6 = %q", got)
	}
	if got := sellingRecommendation(2); got != "Prices are steady, sell as per your need." {
		t.Fatalf("trend +2 = %q", got)
	}
}
