package s0_data

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultTickers is the built-in batch universe (US + NSE India)
var defaultTickers = []string{
	// US
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "BRK-B", "JPM", "JNJ",
	"V", "PG", "XOM", "UNH", "HD", "MA", "CVX", "PFE", "KO", "PEP",
	"BAC", "WMT", "INTC", "CSCO", "ORCL", "T", "VZ", "MRK", "ABBV", "DIS",
	"C", "WFC", "GS", "MS", "IBM", "QCOM", "TXN", "AMD", "NKE", "MCD",
	"CAT", "MMM", "BA", "GE", "F", "GM", "CVS", "MO", "PM", "KHC",
	// India (NSE)
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS", "HINDUNILVR.NS",
	"ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "KOTAKBANK.NS", "LT.NS", "AXISBANK.NS",
	"ASIANPAINT.NS", "MARUTI.NS", "SUNPHARMA.NS", "TITAN.NS", "ULTRACEMCO.NS", "WIPRO.NS",
	"NESTLEIND.NS", "HCLTECH.NS", "BAJFINANCE.NS", "ONGC.NS", "NTPC.NS", "POWERGRID.NS",
	"TATAMOTORS.NS", "TATASTEEL.NS", "COALINDIA.NS", "ADANIPORTS.NS", "TECHM.NS", "JSWSTEEL.NS",
}

// DefaultUniverse is the built-in ticker list
type DefaultUniverse struct{}

// Name returns the source name
func (DefaultUniverse) Name() string { return "default" }

// Tickers returns a copy of the built-in list
func (DefaultUniverse) Tickers(ctx context.Context) ([]string, error) {
	return append([]string(nil), defaultTickers...), nil
}

// StaticUniverse serves a fixed list (CLI/API arguments)
type StaticUniverse struct {
	tickers []string
}

// NewStaticUniverse normalizes and dedupes tickers
func NewStaticUniverse(tickers []string) *StaticUniverse {
	return &StaticUniverse{tickers: NormalizeTickers(tickers)}
}

// Name returns the source name
func (s *StaticUniverse) Name() string { return "static" }

// Tickers returns the fixed list
func (s *StaticUniverse) Tickers(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.tickers...), nil
}

// universeFile is the YAML layout of a universe file
//
//	name: my-watchlist
//	tickers:
//	  - AAPL
//	  - INFY.NS
type universeFile struct {
	Name    string   `yaml:"name"`
	Tickers []string `yaml:"tickers"`
}

// FileUniverse reads tickers from a YAML file on every call
type FileUniverse struct {
	path string
}

// NewFileUniverse creates a file-backed universe
func NewFileUniverse(path string) *FileUniverse {
	return &FileUniverse{path: path}
}

// Name returns the source name
func (f *FileUniverse) Name() string { return "file:" + f.path }

// Tickers loads and normalizes the YAML list
// KnownFields(true)로 오타 필드 즉시 실패
func (f *FileUniverse) Tickers(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var uf universeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&uf); err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", f.path, err)
	}

	tickers := NormalizeTickers(uf.Tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe file %s: no tickers", f.path)
	}
	return tickers, nil
}

// ErrEmptyUniverse is returned when a source yields no tickers
var ErrEmptyUniverse = errors.New("universe is empty")

// NormalizeTickers upper-cases, trims and dedupes, keeping first occurrence order
func NormalizeTickers(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = NormalizeTicker(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NormalizeTicker trims and upper-cases one ticker
// Yahoo 표기: 점(.)은 거래소 접미사, 클래스 주식은 하이픈 (BRK-B)
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
