package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/events"
)

const chartDays = 7

type snapshotMsg events.QuoteSnapshot

type subscriptionClosedMsg struct{}

type refreshDoneMsg struct{ err error }

type coinAddedMsg struct {
	symbol domain.CoinSymbol
	err    error
}

type chartMsg struct {
	chart domain.Chart
	err   error
}

type browserMsg struct {
	url string
	err error
}

func waitForSnapshot(ch <-chan events.QuoteSnapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

func refreshCmd(ctx context.Context, c controller) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: c.Refresh(ctx)}
	}
}

func addCoinCmd(ctx context.Context, c controller, code string) tea.Cmd {
	return func() tea.Msg {
		sym, err := c.AddCoin(ctx, code)
		return coinAddedMsg{symbol: sym, err: err}
	}
}

func chartCmd(ctx context.Context, c controller, symbol domain.CoinSymbol) tea.Cmd {
	return func() tea.Msg {
		ch, err := c.Chart(ctx, symbol, chartDays)
		return chartMsg{chart: ch, err: err}
	}
}

func openURLCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return browserMsg{url: url, err: open(url)}
	}
}

// openBrowser starts the platform URL handler without waiting for it.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// parseAlarmInput reads "COIN TYPE THRESHOLD [SOUND]", e.g. "BTC above 65000".
func parseAlarmInput(s string) (domain.AlarmRule, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return domain.AlarmRule{}, errors.New("expected: COIN TYPE THRESHOLD [SOUND]")
	}

	kind, err := domain.ParseAlarmKind(fields[1])
	if err != nil {
		return domain.AlarmRule{}, err
	}
	threshold, err := domain.ParseThreshold(fields[2])
	if err != nil {
		return domain.AlarmRule{}, err
	}

	rule := domain.AlarmRule{
		Coin:      domain.NormalizeSymbol(fields[0]),
		Kind:      kind,
		Threshold: threshold,
	}
	if len(fields) > 3 {
		rule.Sound = strings.Join(fields[3:], " ")
	}
	return rule, nil
}

// formatAlarmInput is the inverse of parseAlarmInput.
func formatAlarmInput(rule domain.AlarmRule) string {
	kind := map[domain.AlarmKind]string{
		domain.AlarmPriceAbove:     "above",
		domain.AlarmPriceBelow:     "below",
		domain.AlarmPctIncrease24h: "up",
		domain.AlarmPctDecrease24h: "down",
	}[rule.Kind]

	s := fmt.Sprintf("%s %s %s", rule.Coin, kind, rule.Threshold.String())
	if rule.Sound != "" {
		s += " " + rule.Sound
	}
	return s
}
