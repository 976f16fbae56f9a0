// Package domain defines core data structures and pure rules of the price widget.
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	minSymbolLen = 3
	maxSymbolLen = 5
)

// CoinSymbol short uppercase ticker, e.g. BTC.
type CoinSymbol string

// DefaultWatchList is used when no watch list has been saved yet.
var DefaultWatchList = []CoinSymbol{"BTC", "ETH", "ADA", "BNB"}

// NormalizeSymbol trims and uppercases user input.
func NormalizeSymbol(code string) CoinSymbol {
	return CoinSymbol(strings.ToUpper(strings.TrimSpace(code)))
}

// String returns the string representation.
func (s CoinSymbol) String() string {
	return string(s)
}

// Validate checks the ticker length bounds.
func (s CoinSymbol) Validate() error {
	n := utf8.RuneCountInString(string(s))
	if n < minSymbolLen || n > maxSymbolLen {
		return ErrInvalidCode
	}
	return nil
}

// IndexOf returns position of the symbol in the list or -1.
func IndexOf(list []CoinSymbol, s CoinSymbol) int {
	for i, c := range list {
		if c == s {
			return i
		}
	}
	return -1
}

// Contains reports whether the list holds the symbol.
func Contains(list []CoinSymbol, s CoinSymbol) bool {
	return IndexOf(list, s) >= 0
}

// SymbolsToStrings converts symbols for API calls.
func SymbolsToStrings(list []CoinSymbol) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}
