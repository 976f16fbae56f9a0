package domain

import "time"

// AlarmEvent journal entry for a fired alarm.
// Decimal values are kept as strings so web consumers see them verbatim.
type AlarmEvent struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"ts"`
	RuleID           string    `json:"rule_id,omitempty"`
	Coin             string    `json:"coin"`
	Kind             string    `json:"type"`
	Threshold        string    `json:"threshold"`
	Price            string    `json:"price"`
	PercentChange24h string    `json:"percent_change_24h"`
	Message          string    `json:"message"`
}

// NewAlarmEvent creates an AlarmEvent from a fired alarm.
func NewAlarmEvent(id string, ts time.Time, fired FiredAlarm) AlarmEvent {
	return AlarmEvent{
		ID:               id,
		Timestamp:        ts,
		RuleID:           fired.Rule.ID,
		Coin:             fired.Rule.Coin.String(),
		Kind:             fired.Rule.Kind.String(),
		Threshold:        fired.Rule.Threshold.String(),
		Price:            fired.Record.Price.String(),
		PercentChange24h: fired.Record.PercentChange24h.String(),
		Message:          fired.Rule.Message(),
	}
}

// AlarmEventRecord bundles an event with its journal index.
type AlarmEventRecord struct {
	Index uint64
	Event AlarmEvent
}
