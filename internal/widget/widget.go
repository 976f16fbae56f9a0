// Package widget owns the watch list, alarms and latest prices, and runs refresh cycles.
package widget

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/events"
	"github.com/vadiminshakov/coinwatch/internal/notify"
	"github.com/vadiminshakov/coinwatch/internal/services/pricer"
)

const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultFetchTimeout    = 10 * time.Second

	// StatusFetchFailed shown when a refresh could not fetch prices.
	StatusFetchFailed = "Could not fetch new prices."
)

var (
	// ErrRefreshInProgress returned when a refresh is requested while another one is running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
	ErrInvalidInterval   = errors.New("refresh interval must be positive")
	ErrChartUnavailable  = errors.New("chart provider is not configured")
)

type coinStore interface {
	Load() ([]domain.CoinSymbol, error)
	Save(coins []domain.CoinSymbol) error
}

type alarmStore interface {
	Load() ([]domain.AlarmRule, error)
	Save(rules []domain.AlarmRule) error
}

type alarmJournal interface {
	Save(event domain.AlarmEvent) error
}

type chartBuilder interface {
	Build(ctx context.Context, symbol domain.CoinSymbol, days int) (domain.Chart, error)
}

// Session is the mutable widget state. Prices keys are a subset of Coins.
type Session struct {
	Coins          []domain.CoinSymbol
	Alarms         []domain.AlarmRule
	Prices         map[domain.CoinSymbol]domain.PriceRecord
	ChangeInterval domain.ChangeInterval
}

type Widget struct {
	logger   *zap.Logger
	fetcher  pricer.Pricer
	linker   pricer.InfoLinker
	charts   chartBuilder
	coins    coinStore
	alarms   alarmStore
	journal  alarmJournal
	notifier notify.Notifier
	quotes   *events.QuoteBroadcaster
	now      func() time.Time

	fetchTimeout time.Duration

	mu              sync.Mutex
	session         Session
	refreshInterval time.Duration
	intervalCh      chan time.Duration
	refreshing      atomic.Bool
	// pending is set by callers that found a refresh running; the runner fetches again.
	pending atomic.Bool

	// set after a failed write, cleared by a successful one
	coinsDirty  atomic.Bool
	alarmsDirty atomic.Bool

	// publishMu keeps snapshots in the order their state was read
	publishMu sync.Mutex
}

type Option func(*Widget)

func WithInfoLinker(l pricer.InfoLinker) Option {
	return func(w *Widget) { w.linker = l }
}

func WithChart(c chartBuilder) Option {
	return func(w *Widget) { w.charts = c }
}

func WithJournal(j alarmJournal) Option {
	return func(w *Widget) { w.journal = j }
}

func WithNotifier(n notify.Notifier) Option {
	return func(w *Widget) { w.notifier = n }
}

// WithRefreshInterval sets the initial polling period; non-positive values are ignored.
func WithRefreshInterval(d time.Duration) Option {
	return func(w *Widget) {
		if d > 0 {
			w.refreshInterval = d
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(w *Widget) {
		if d > 0 {
			w.fetchTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// New loads persisted state and returns a widget ready to Run.
// Unreadable files fall back to defaults with a warning.
func New(
	logger *zap.Logger,
	fetcher pricer.Pricer,
	coins coinStore,
	alarms alarmStore,
	quotes *events.QuoteBroadcaster,
	opts ...Option,
) *Widget {
	w := &Widget{
		logger:          logger,
		fetcher:         fetcher,
		coins:           coins,
		alarms:          alarms,
		quotes:          quotes,
		notifier:        notify.NewLogNotifier(logger),
		now:             time.Now,
		fetchTimeout:    DefaultFetchTimeout,
		refreshInterval: DefaultRefreshInterval,
		intervalCh:      make(chan time.Duration, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if l, ok := fetcher.(pricer.InfoLinker); ok && w.linker == nil {
		w.linker = l
	}

	coinList, err := coins.Load()
	if err != nil {
		logger.Warn("failed to load coin list, using defaults", zap.Error(err))
	}
	rules, err := alarms.Load()
	if err != nil {
		logger.Warn("failed to load alarms, starting with none", zap.Error(err))
	}

	w.session = Session{
		Coins:          coinList,
		Alarms:         rules,
		Prices:         make(map[domain.CoinSymbol]domain.PriceRecord),
		ChangeInterval: domain.ChangeInterval24h,
	}

	return w
}

// Snapshot returns a copy of the session.
func (w *Widget) Snapshot() Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	prices := make(map[domain.CoinSymbol]domain.PriceRecord, len(w.session.Prices))
	for k, v := range w.session.Prices {
		prices[k] = v
	}
	return Session{
		Coins:          slices.Clone(w.session.Coins),
		Alarms:         slices.Clone(w.session.Alarms),
		Prices:         prices,
		ChangeInterval: w.session.ChangeInterval,
	}
}

// Coins returns the watch list in display order.
func (w *Widget) Coins() []domain.CoinSymbol {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.session.Coins)
}

// Descriptors returns display state for watch-list coins that have a price, in watch-list order.
func (w *Widget) Descriptors() []domain.DisplayDescriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.DescribeAll(w.session.Coins, w.session.Prices, w.session.ChangeInterval)
}

func (w *Widget) ChangeInterval() domain.ChangeInterval {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.ChangeInterval
}

// SetChangeInterval switches the percent change shown and re-renders every coin without fetching.
func (w *Widget) SetChangeInterval(interval domain.ChangeInterval) error {
	if !interval.IsValid() {
		return errors.Errorf("unknown change interval %q", interval)
	}

	w.mu.Lock()
	w.session.ChangeInterval = interval
	w.mu.Unlock()

	w.publish("", nil)
	return nil
}

func (w *Widget) RefreshInterval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshInterval
}

// SetRefreshInterval changes the polling period; a running loop restarts its ticker.
func (w *Widget) SetRefreshInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidInterval
	}

	w.mu.Lock()
	w.refreshInterval = d
	w.mu.Unlock()

	// keep only the latest pending value
	select {
	case <-w.intervalCh:
	default:
	}
	w.intervalCh <- d

	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (w *Widget) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.RefreshInterval())
	defer ticker.Stop()

	w.logger.Info("Starting refresh loop", zap.Duration("interval", w.RefreshInterval()))
	w.refreshAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Context done, stopping refresh loop")
			return ctx.Err()
		case d := <-w.intervalCh:
			ticker.Reset(d)
			w.logger.Info("Refresh interval changed", zap.Duration("interval", d))
		case <-ticker.C:
			w.refreshAndLog(ctx)
		}
	}
}

func (w *Widget) refreshAndLog(ctx context.Context) {
	err := w.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRefreshInProgress):
		w.logger.Debug("refresh skipped, previous one still running")
	case ctx.Err() != nil:
	default:
		w.logger.Error("refresh failed", zap.Error(err))
	}
}

// Refresh runs one fetch-evaluate-notify cycle. On fetch failure the previous prices stay
// and subscribers receive a status message. A call made while another refresh runs returns
// ErrRefreshInProgress and the running refresh fetches once more with the current watch list.
func (w *Widget) Refresh(ctx context.Context) error {
	w.pending.Store(true)
	if !w.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}

	for {
		w.pending.Store(false)
		err := w.refreshOnce(ctx)
		w.refreshing.Store(false)

		if err != nil || !w.pending.Load() || !w.refreshing.CompareAndSwap(false, true) {
			return err
		}
		w.logger.Debug("watch list changed during refresh, fetching again")
	}
}

func (w *Widget) refreshOnce(ctx context.Context) error {
	symbols := w.Coins()

	fetchCtx, cancel := context.WithTimeout(ctx, w.fetchTimeout)
	records, err := w.fetcher.GetQuotes(fetchCtx, symbols)
	cancel()
	if err != nil {
		w.publish(StatusFetchFailed, nil)
		return errors.Wrap(err, "failed to fetch prices")
	}

	w.mu.Lock()
	prices := make(map[domain.CoinSymbol]domain.PriceRecord, len(records))
	for sym, rec := range records {
		// a coin removed while the fetch was in flight stays removed
		if domain.Contains(w.session.Coins, sym) {
			prices[sym] = rec
		}
	}
	w.session.Prices = prices
	fired := domain.EvaluateAlarms(w.session.Coins, prices, w.session.Alarms)
	w.mu.Unlock()

	w.logger.Debug("prices refreshed", zap.Int("coins", len(prices)), zap.Int("fired", len(fired)))

	w.publish("", w.dispatch(ctx, fired))
	return nil
}

func (w *Widget) dispatch(ctx context.Context, fired []domain.FiredAlarm) []domain.AlarmEvent {
	if len(fired) == 0 {
		return nil
	}

	ts := w.now().UTC()
	out := make([]domain.AlarmEvent, 0, len(fired))
	for _, f := range fired {
		if w.notifier != nil {
			if err := w.notifier.Notify(ctx, f); err != nil {
				w.logger.Warn("failed to deliver alarm", zap.String("coin", f.Rule.Coin.String()), zap.Error(err))
			}
		}

		event := domain.NewAlarmEvent(uuid.NewString(), ts, f)
		if w.journal != nil {
			if err := w.journal.Save(event); err != nil {
				w.logger.Warn("failed to journal alarm", zap.String("coin", event.Coin), zap.Error(err))
			}
		}
		out = append(out, event)
	}

	return out
}

func (w *Widget) publish(status string, fired []domain.AlarmEvent) {
	if w.quotes == nil {
		return
	}

	w.publishMu.Lock()
	defer w.publishMu.Unlock()

	w.mu.Lock()
	snapshot := events.QuoteSnapshot{
		Timestamp: w.now().UTC(),
		Interval:  w.session.ChangeInterval,
		Coins:     domain.DescribeAll(w.session.Coins, w.session.Prices, w.session.ChangeInterval),
		Status:    status,
		Fired:     fired,
	}
	w.mu.Unlock()

	w.quotes.Publish(snapshot)
}

// Subscribe returns a channel of snapshots published after each refresh.
func (w *Widget) Subscribe() chan events.QuoteSnapshot {
	return w.quotes.Subscribe()
}

func (w *Widget) Unsubscribe(ch chan events.QuoteSnapshot) {
	w.quotes.Unsubscribe(ch)
}

// CoinURL returns the info page of a coin with a known identifier.
func (w *Widget) CoinURL(symbol domain.CoinSymbol) (string, error) {
	symbol = domain.NormalizeSymbol(string(symbol))

	w.mu.Lock()
	rec, ok := w.session.Prices[symbol]
	w.mu.Unlock()

	if !ok || rec.Identifier == "" || w.linker == nil {
		return "", errors.Wrapf(domain.ErrNoIdentifier, "%s", symbol)
	}
	return w.linker.InfoURL(rec.Identifier)
}

// Chart builds a daily chart for a watch-list coin.
func (w *Widget) Chart(ctx context.Context, symbol domain.CoinSymbol, days int) (domain.Chart, error) {
	if w.charts == nil {
		return domain.Chart{}, ErrChartUnavailable
	}
	symbol = domain.NormalizeSymbol(string(symbol))
	if !domain.Contains(w.Coins(), symbol) {
		return domain.Chart{}, errors.Wrapf(domain.ErrNotFound, "%s", symbol)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, w.fetchTimeout)
	defer cancel()
	return w.charts.Build(fetchCtx, symbol, days)
}

// Close retries writes that failed earlier. Lists already on disk are left alone so
// alarms added by another process, e.g. the alarm wizard, survive.
func (w *Widget) Close() error {
	w.mu.Lock()
	coins := slices.Clone(w.session.Coins)
	rules := slices.Clone(w.session.Alarms)
	w.mu.Unlock()

	if w.coinsDirty.Load() {
		if err := w.coins.Save(coins); err != nil {
			return errors.Wrap(err, "failed to save coin list")
		}
		w.coinsDirty.Store(false)
	}
	if w.alarmsDirty.Load() {
		if err := w.alarms.Save(rules); err != nil {
			return errors.Wrap(err, "failed to save alarms")
		}
		w.alarmsDirty.Store(false)
	}
	return nil
}
