package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// priceDecimals fixed precision used before trimming the fraction.
const priceDecimals = 4

// Arrow direction of the change indicator.
type Arrow int

const (
	ArrowFlat Arrow = iota
	ArrowUp
	ArrowDown
)

// String returns the string representation.
func (a Arrow) String() string {
	switch a {
	case ArrowUp:
		return "up"
	case ArrowDown:
		return "down"
	default:
		return "flat"
	}
}

// MarshalText encodes the arrow by name.
func (a Arrow) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Glyph returns the symbol drawn next to the price.
func (a Arrow) Glyph() string {
	switch a {
	case ArrowUp:
		return "▲"
	case ArrowDown:
		return "▼"
	default:
		return "●"
	}
}

// ColorToken semantic color, renderers map it to concrete styles.
type ColorToken string

const (
	ColorGreen   ColorToken = "green"
	ColorRed     ColorToken = "red"
	ColorNeutral ColorToken = "neutral"
)

// DisplayDescriptor render data for one coin in the current cycle.
type DisplayDescriptor struct {
	Symbol         CoinSymbol      `json:"symbol"`
	Arrow          Arrow           `json:"arrow"`
	Color          ColorToken      `json:"color"`
	IntegerPart    string          `json:"integer"`
	FractionalPart string          `json:"fraction"`
	PercentChange  decimal.Decimal `json:"percent_change"`
	Interval       ChangeInterval  `json:"interval"`
	Identifier     string          `json:"identifier,omitempty"`
}

// PriceText joins both price parts, e.g. "1,234.56".
func (d DisplayDescriptor) PriceText() string {
	return d.IntegerPart + d.FractionalPart
}

// Classify maps a percent change to arrow and color. Zero is exact, no epsilon.
func Classify(pct decimal.Decimal) (Arrow, ColorToken) {
	switch pct.Sign() {
	case 1:
		return ArrowUp, ColorGreen
	case -1:
		return ArrowDown, ColorRed
	default:
		return ArrowFlat, ColorNeutral
	}
}

// FormatPrice renders price with 4 decimals and splits it into a grouped integer part
// and a fraction with trailing zeros (and a bare dot) removed.
func FormatPrice(price decimal.Decimal) (integerPart, fractionalPart string) {
	fixed := price.StringFixed(priceDecimals)

	intStr, fracStr, _ := strings.Cut(fixed, ".")
	integerPart = groupThousands(intStr)

	if fracStr != "" {
		fractionalPart = strings.TrimRight("."+fracStr, "0")
		fractionalPart = strings.TrimSuffix(fractionalPart, ".")
	}

	return integerPart, fractionalPart
}

// groupThousands inserts commas into a signed digit string. The sign is kept as written so "-0" stays negative.
func groupThousands(intStr string) string {
	digits, negative := strings.CutPrefix(intStr, "-")
	sign := ""
	if negative {
		sign = "-"
	}

	if n, err := strconv.ParseUint(digits, 10, 64); err == nil {
		return sign + message.NewPrinter(language.English).Sprintf("%d", n)
	}

	// beyond uint64
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Describe builds the descriptor for a record and the selected change interval.
func Describe(record PriceRecord, interval ChangeInterval) DisplayDescriptor {
	pct := record.PercentChange(interval)
	arrow, color := Classify(pct)
	integerPart, fractionalPart := FormatPrice(record.Price)

	return DisplayDescriptor{
		Symbol:         record.Symbol,
		Arrow:          arrow,
		Color:          color,
		IntegerPart:    integerPart,
		FractionalPart: fractionalPart,
		PercentChange:  pct,
		Interval:       interval,
		Identifier:     record.Identifier,
	}
}

// DescribeAll builds descriptors in watch-list order, skipping coins without a record.
func DescribeAll(watchList []CoinSymbol, snapshot map[CoinSymbol]PriceRecord, interval ChangeInterval) []DisplayDescriptor {
	out := make([]DisplayDescriptor, 0, len(watchList))
	for _, coin := range watchList {
		record, ok := snapshot[coin]
		if !ok {
			continue
		}
		out = append(out, Describe(record, interval))
	}
	return out
}
