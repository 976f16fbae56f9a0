package widget

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// AddCoin appends a coin to the watch list, saves it and refreshes prices at once.
// A failed refresh is reported to subscribers but does not undo the addition.
func (w *Widget) AddCoin(ctx context.Context, code string) (domain.CoinSymbol, error) {
	sym := domain.NormalizeSymbol(code)
	if err := sym.Validate(); err != nil {
		return "", err
	}

	w.mu.Lock()
	if domain.Contains(w.session.Coins, sym) {
		w.mu.Unlock()
		return "", errors.Wrapf(domain.ErrDuplicateCode, "%s", sym)
	}
	w.session.Coins = append(w.session.Coins, sym)
	coins := slices.Clone(w.session.Coins)
	w.mu.Unlock()

	w.saveCoins(coins)

	// a running refresh picks the new coin up on its follow-up fetch
	if err := w.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		w.logger.Warn("refresh after adding coin failed", zap.String("coin", sym.String()), zap.Error(err))
	}

	return sym, nil
}

// RemoveCoin drops a coin with its cached price and every alarm on it.
func (w *Widget) RemoveCoin(code string) (domain.CoinSymbol, error) {
	sym := domain.NormalizeSymbol(code)

	w.mu.Lock()
	idx := domain.IndexOf(w.session.Coins, sym)
	if idx < 0 {
		w.mu.Unlock()
		return "", errors.Wrapf(domain.ErrNotFound, "%s", sym)
	}
	w.session.Coins = slices.Delete(slices.Clone(w.session.Coins), idx, idx+1)
	delete(w.session.Prices, sym)
	w.session.Alarms = domain.RemoveAlarmsFor(w.session.Alarms, sym)
	coins := slices.Clone(w.session.Coins)
	rules := slices.Clone(w.session.Alarms)
	w.mu.Unlock()

	w.saveCoins(coins)
	w.saveAlarms(rules)
	w.publish("", nil)

	return sym, nil
}

func (w *Widget) saveCoins(coins []domain.CoinSymbol) {
	if err := w.coins.Save(coins); err != nil {
		w.coinsDirty.Store(true)
		w.logger.Error("failed to save coin list", zap.Error(err))
		return
	}
	w.coinsDirty.Store(false)
}

func (w *Widget) saveAlarms(rules []domain.AlarmRule) {
	if err := w.alarms.Save(rules); err != nil {
		w.alarmsDirty.Store(true)
		w.logger.Error("failed to save alarms", zap.Error(err))
		return
	}
	w.alarmsDirty.Store(false)
}
