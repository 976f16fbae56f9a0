package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AlarmKind condition checked by an alarm rule.
type AlarmKind int

const (
	AlarmPriceAbove AlarmKind = iota
	AlarmPriceBelow
	AlarmPctIncrease24h
	AlarmPctDecrease24h
)

// labels as they appear in saved alarm files
const (
	alarmLabelPriceAbove  = "Price above"
	alarmLabelPriceBelow  = "Price below"
	alarmLabelPctIncrease = "% increase (24h)"
	alarmLabelPctDecrease = "% decrease (24h)"
)

// AlarmKinds lists every kind in selector order.
var AlarmKinds = []AlarmKind{AlarmPriceAbove, AlarmPriceBelow, AlarmPctIncrease24h, AlarmPctDecrease24h}

// String returns the label of the kind.
func (k AlarmKind) String() string {
	switch k {
	case AlarmPriceAbove:
		return alarmLabelPriceAbove
	case AlarmPriceBelow:
		return alarmLabelPriceBelow
	case AlarmPctIncrease24h:
		return alarmLabelPctIncrease
	case AlarmPctDecrease24h:
		return alarmLabelPctDecrease
	default:
		return "unknown"
	}
}

// IsValid checks if the AlarmKind value is valid.
func (k AlarmKind) IsValid() bool {
	return k >= AlarmPriceAbove && k <= AlarmPctDecrease24h
}

// MarshalText encodes the kind as its label.
func (k AlarmKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, errors.Wrapf(ErrUnknownAlarmKind, "kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a label or short name.
func (k *AlarmKind) UnmarshalText(text []byte) error {
	parsed, err := ParseAlarmKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseAlarmKind accepts labels ("Price above") and short names ("above", "below", "up", "down").
func ParseAlarmKind(s string) (AlarmKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(alarmLabelPriceAbove), "above", "price_above":
		return AlarmPriceAbove, nil
	case strings.ToLower(alarmLabelPriceBelow), "below", "price_below":
		return AlarmPriceBelow, nil
	case strings.ToLower(alarmLabelPctIncrease), "up", "increase", "pct_increase_24h":
		return AlarmPctIncrease24h, nil
	case strings.ToLower(alarmLabelPctDecrease), "down", "decrease", "pct_decrease_24h":
		return AlarmPctDecrease24h, nil
	default:
		return 0, errors.Wrapf(ErrUnknownAlarmKind, "%q", s)
	}
}

// ParseThreshold validates user input for an alarm threshold.
func ParseThreshold(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyThreshold
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidThreshold, "%q", s)
	}
	return d, nil
}

// AlarmRule stored threshold condition on one coin.
type AlarmRule struct {
	ID        string
	Coin      CoinSymbol
	Kind      AlarmKind
	Threshold decimal.Decimal
	// Sound optional path to a sound file played on trigger.
	Sound string
}

// Triggered evaluates the rule against a record. Percent kinds always use the 24h change,
// comparisons are strict and the decrease threshold is sign-normalized.
func (r AlarmRule) Triggered(record PriceRecord) bool {
	switch r.Kind {
	case AlarmPriceAbove:
		return record.Price.GreaterThan(r.Threshold)
	case AlarmPriceBelow:
		return record.Price.LessThan(r.Threshold)
	case AlarmPctIncrease24h:
		return record.PercentChange24h.GreaterThan(r.Threshold)
	case AlarmPctDecrease24h:
		return record.PercentChange24h.LessThan(r.Threshold.Abs().Neg())
	default:
		return false
	}
}

// String returns the list label, e.g. "BTC - Price above 65000".
func (r AlarmRule) String() string {
	return fmt.Sprintf("%s - %s %s", r.Coin, r.Kind, r.Threshold.String())
}

// Message returns the notification text.
func (r AlarmRule) Message() string {
	return fmt.Sprintf("Alarm for %s: %s %s", r.Coin, r.Kind, r.Threshold.String())
}

// FiredAlarm rule that fired together with the record that triggered it.
type FiredAlarm struct {
	Rule   AlarmRule
	Record PriceRecord
}

// EvaluateAlarms returns rules firing for the snapshot, ordered by watch list and then by
// alarm list. Rules whose coin has no record are skipped. No state is kept between calls,
// so a rule fires on every evaluation while its condition holds.
func EvaluateAlarms(watchList []CoinSymbol, snapshot map[CoinSymbol]PriceRecord, rules []AlarmRule) []FiredAlarm {
	var fired []FiredAlarm

	visited := make(map[CoinSymbol]struct{}, len(watchList))
	for _, coin := range watchList {
		if _, ok := visited[coin]; ok {
			continue
		}
		visited[coin] = struct{}{}
		fired = appendFired(fired, coin, snapshot, rules)
	}

	// records for coins that left the watch list mid-cycle
	for _, rule := range rules {
		if _, ok := visited[rule.Coin]; ok {
			continue
		}
		record, ok := snapshot[rule.Coin]
		if ok && rule.Triggered(record) {
			fired = append(fired, FiredAlarm{Rule: rule, Record: record})
		}
	}

	return fired
}

func appendFired(fired []FiredAlarm, coin CoinSymbol, snapshot map[CoinSymbol]PriceRecord, rules []AlarmRule) []FiredAlarm {
	record, ok := snapshot[coin]
	if !ok {
		return fired
	}
	for _, rule := range rules {
		if rule.Coin == coin && rule.Triggered(record) {
			fired = append(fired, FiredAlarm{Rule: rule, Record: record})
		}
	}
	return fired
}

// RemoveAlarmsFor drops every rule referencing coin, keeping order of the rest.
func RemoveAlarmsFor(rules []AlarmRule, coin CoinSymbol) []AlarmRule {
	out := make([]AlarmRule, 0, len(rules))
	for _, r := range rules {
		if r.Coin != coin {
			out = append(out, r)
		}
	}
	return out
}
