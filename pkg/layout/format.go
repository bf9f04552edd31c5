package layout

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatUSD renders a package value the way member cards show it: grouped
// thousands with a dollar sign, cents only when the value has them.
func FormatUSD(v float64) string {
	usd := message.NewPrinter(language.English)
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return usd.Sprintf("$%d", int64(v))
	}
	return usd.Sprintf("$%.2f", v)
}
