package thesis

import (
	"fmt"
	"strings"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// systemPrompt frames the narrative request
const systemPrompt = "You are a concise equity analyst. Write a short investment thesis " +
	"(3 to 5 sentences) for the stock described by the user. Use only the data given, " +
	"mention the main risks, and do not give personalized financial advice."

// BuildPrompt renders the user message for a scored ticker
// 결측값은 "n/a"로 표기
func BuildPrompt(in contracts.ThesisInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stock: %s (%s)\n", in.Name, in.Symbol)
	if in.Fundamentals.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s / %s\n", in.Fundamentals.Sector, in.Fundamentals.Industry)
	}
	fmt.Fprintf(&b, "Conviction score: %d/100\n", in.Score)

	if len(in.Reasons) > 0 {
		fmt.Fprintf(&b, "Signals: %s\n", strings.Join(in.Reasons, "; "))
	} else {
		b.WriteString("Signals: none\n")
	}

	f := in.Fundamentals
	fmt.Fprintf(&b, "P/E: %s, P/B: %s, EPS: %s, ROE: %s, Price: %s\n",
		f.PE, f.PB, f.EPS, f.ROE, f.Price)

	ind := in.Indicators
	fmt.Fprintf(&b, "7-day change: %s%%, 30-day change: %s%%, SMA20: %s, SMA50: %s, RSI14: %s\n",
		ind.PriceDrop7D, ind.PriceDrop30D, ind.SMA20, ind.SMA50, ind.RSI14)

	b.WriteString("Explain whether this looks like a genuine value opportunity.")
	return b.String()
}
