package s2_signals

import (
	"strings"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// Normalize fills defaults for a raw quote snapshot
// ⭐ SSOT: 재무 스냅샷 정규화는 여기서만
//
// name → symbol, exchange/sector/industry → "".
// Numeric fields stay absent so that rules can tell "unknown" from "zero".
func Normalize(symbol string, q contracts.QuoteSnapshot) contracts.Fundamentals {
	return contracts.Fundamentals{
		Symbol:   symbol,
		Name:     textOr(q.Name, symbol),
		Exchange: textOr(q.Exchange, ""),
		Sector:   textOr(q.Sector, ""),
		Industry: textOr(q.Industry, ""),

		// Some()가 NaN/Inf를 걸러내므로 재포장
		Price: reopt(q.Price),
		PE:    reopt(q.PE),
		PB:    reopt(q.PB),
		EPS:   reopt(q.EPS),
		ROE:   reopt(q.ROE),
	}
}

func textOr(p *string, def string) string {
	if p == nil {
		return def
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return def
	}
	return v
}

func reopt(o contracts.Optional) contracts.Optional {
	v, ok := o.Get()
	if !ok {
		return contracts.None()
	}
	return contracts.Some(v)
}
