package s0_data

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/conviction-radar/pkg/httputil"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// SP500Universe scrapes the S&P 500 constituents table from Wikipedia
type SP500Universe struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewSP500Universe creates a new scraper-backed universe
func NewSP500Universe(client *httputil.Client, url string, log *logger.Logger) *SP500Universe {
	return &SP500Universe{
		client: client,
		url:    url,
		logger: log,
	}
}

// Name returns the source name
func (s *SP500Universe) Name() string { return "sp500" }

// Tickers fetches and parses the constituents table
func (s *SP500Universe) Tickers(ctx context.Context) ([]string, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch sp500 list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch sp500 list: status %d", resp.StatusCode)
	}

	tickers, err := parseSP500(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("count", len(tickers)).Info("Loaded S&P 500 universe")
	return tickers, nil
}

// parseSP500 reads the first column of table#constituents
// Wikipedia는 "BRK.B" 표기 → Yahoo는 "BRK-B"
func parseSP500(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse sp500 html: %w", err)
	}

	table := doc.Find("table#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse sp500 html: constituents table not found")
	}

	var raw []string
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return // header row
		}
		symbol := strings.TrimSpace(cells.Eq(0).Text())
		if symbol == "" {
			return
		}
		raw = append(raw, strings.ReplaceAll(symbol, ".", "-"))
	})

	tickers := NormalizeTickers(raw)
	if len(tickers) == 0 {
		return nil, ErrEmptyUniverse
	}
	return tickers, nil
}
