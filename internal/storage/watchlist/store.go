// Package watchlist persists the ordered list of tracked coins.
package watchlist

import (
	"path/filepath"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/storage/jsonfile"
)

// FileName name of the watch-list file inside the data dir.
const FileName = "coins.json"

// Store keeps the watch list as a JSON array of tickers.
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

// Load returns the saved watch list. The default list is returned when the file is missing,
// and also alongside the error when the file cannot be read or decoded.
func (s *Store) Load() ([]domain.CoinSymbol, error) {
	var codes []string
	if err := jsonfile.Read(s.path, &codes); err != nil {
		if jsonfile.IsNotExist(err) {
			return defaults(), nil
		}
		return defaults(), err
	}

	coins := make([]domain.CoinSymbol, 0, len(codes))
	for _, c := range codes {
		sym := domain.NormalizeSymbol(c)
		if sym == "" || domain.Contains(coins, sym) {
			continue
		}
		coins = append(coins, sym)
	}

	return coins, nil
}

// Save writes the list in display order.
func (s *Store) Save(coins []domain.CoinSymbol) error {
	return jsonfile.Write(s.path, domain.SymbolsToStrings(coins))
}

func defaults() []domain.CoinSymbol {
	out := make([]domain.CoinSymbol, len(domain.DefaultWatchList))
	copy(out, domain.DefaultWatchList)
	return out
}
