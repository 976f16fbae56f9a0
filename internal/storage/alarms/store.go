// Package alarms persists alarm rules as a JSON array keyed by type label:
// [{"coin": "BTC", "type": "Price above", "threshold": 65000.0, "sound": ""}].
package alarms

import (
	"encoding/json"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/storage/jsonfile"
)

// FileName name of the alarm file inside the data dir.
const FileName = "alarms.json"

// Store keeps alarm rules as a JSON array.
type Store struct {
	path string
}

// NewStore creates a store under dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// StoredRule is the serializable form of domain.AlarmRule.
type StoredRule struct {
	ID        string           `json:"id,omitempty"`
	Coin      string           `json:"coin"`
	Type      domain.AlarmKind `json:"type"`
	Threshold json.Number      `json:"threshold"`
	Sound     string           `json:"sound"`
}

// NewStoredRule converts a rule into its stored representation.
func NewStoredRule(rule domain.AlarmRule) StoredRule {
	return StoredRule{
		ID:        rule.ID,
		Coin:      rule.Coin.String(),
		Type:      rule.Kind,
		Threshold: json.Number(rule.Threshold.String()),
		Sound:     rule.Sound,
	}
}

// ToRule reconstructs the domain rule. Rules saved without an id get a fresh one.
func (sr StoredRule) ToRule() (domain.AlarmRule, error) {
	threshold, err := decimal.NewFromString(sr.Threshold.String())
	if err != nil {
		return domain.AlarmRule{}, errors.Wrapf(err, "decode threshold of %s alarm", sr.Coin)
	}

	id := sr.ID
	if id == "" {
		id = uuid.NewString()
	}

	return domain.AlarmRule{
		ID:        id,
		Coin:      domain.NormalizeSymbol(sr.Coin),
		Kind:      sr.Type,
		Threshold: threshold,
		Sound:     sr.Sound,
	}, nil
}

// Load returns saved alarms. Missing file yields an empty list; unreadable file yields an
// empty list together with the error.
func (s *Store) Load() ([]domain.AlarmRule, error) {
	var stored []StoredRule
	if err := jsonfile.Read(s.path, &stored); err != nil {
		if jsonfile.IsNotExist(err) {
			return []domain.AlarmRule{}, nil
		}
		return []domain.AlarmRule{}, err
	}

	rules := make([]domain.AlarmRule, 0, len(stored))
	for _, sr := range stored {
		rule, err := sr.ToRule()
		if err != nil {
			return []domain.AlarmRule{}, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// Save writes rules preserving their order.
func (s *Store) Save(rules []domain.AlarmRule) error {
	stored := make([]StoredRule, len(rules))
	for i, r := range rules {
		stored[i] = NewStoredRule(r)
	}
	return jsonfile.Write(s.path, stored)
}
