package widget

import (
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// Alarms returns the alarm list in edit order.
func (w *Widget) Alarms() []domain.AlarmRule {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.session.Alarms)
}

// AddAlarm appends a rule for a watch-list coin and saves the list.
func (w *Widget) AddAlarm(rule domain.AlarmRule) (domain.AlarmRule, error) {
	w.mu.Lock()
	rule, err := w.checkRule(rule)
	if err != nil {
		w.mu.Unlock()
		return domain.AlarmRule{}, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	w.session.Alarms = append(slices.Clone(w.session.Alarms), rule)
	rules := slices.Clone(w.session.Alarms)
	w.mu.Unlock()

	w.saveAlarms(rules)
	return rule, nil
}

// UpdateAlarm replaces the rule at index, keeping its id.
func (w *Widget) UpdateAlarm(index int, rule domain.AlarmRule) (domain.AlarmRule, error) {
	w.mu.Lock()
	if index < 0 || index >= len(w.session.Alarms) {
		w.mu.Unlock()
		return domain.AlarmRule{}, errors.Wrapf(domain.ErrAlarmIndex, "%d", index)
	}
	rule, err := w.checkRule(rule)
	if err != nil {
		w.mu.Unlock()
		return domain.AlarmRule{}, err
	}
	rule.ID = w.session.Alarms[index].ID
	w.session.Alarms = slices.Clone(w.session.Alarms)
	w.session.Alarms[index] = rule
	rules := slices.Clone(w.session.Alarms)
	w.mu.Unlock()

	w.saveAlarms(rules)
	return rule, nil
}

// RemoveAlarm deletes the rule at index.
func (w *Widget) RemoveAlarm(index int) (domain.AlarmRule, error) {
	w.mu.Lock()
	if index < 0 || index >= len(w.session.Alarms) {
		w.mu.Unlock()
		return domain.AlarmRule{}, errors.Wrapf(domain.ErrAlarmIndex, "%d", index)
	}
	removed := w.session.Alarms[index]
	w.session.Alarms = slices.Delete(slices.Clone(w.session.Alarms), index, index+1)
	rules := slices.Clone(w.session.Alarms)
	w.mu.Unlock()

	w.saveAlarms(rules)
	return removed, nil
}

// checkRule must be called with w.mu held.
func (w *Widget) checkRule(rule domain.AlarmRule) (domain.AlarmRule, error) {
	rule.Coin = domain.NormalizeSymbol(string(rule.Coin))
	if !domain.Contains(w.session.Coins, rule.Coin) {
		return rule, errors.Wrapf(domain.ErrNotFound, "%s", rule.Coin)
	}
	if !rule.Kind.IsValid() {
		return rule, domain.ErrUnknownAlarmKind
	}
	return rule, nil
}
