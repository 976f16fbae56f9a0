// Package tui renders the price widget in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/events"
	"github.com/vadiminshakov/coinwatch/internal/widget"
)

type controller interface {
	Descriptors() []domain.DisplayDescriptor
	ChangeInterval() domain.ChangeInterval
	SetChangeInterval(interval domain.ChangeInterval) error
	RefreshInterval() time.Duration
	SetRefreshInterval(d time.Duration) error
	Refresh(ctx context.Context) error
	AddCoin(ctx context.Context, code string) (domain.CoinSymbol, error)
	RemoveCoin(code string) (domain.CoinSymbol, error)
	Alarms() []domain.AlarmRule
	AddAlarm(rule domain.AlarmRule) (domain.AlarmRule, error)
	UpdateAlarm(index int, rule domain.AlarmRule) (domain.AlarmRule, error)
	RemoveAlarm(index int) (domain.AlarmRule, error)
	CoinURL(symbol domain.CoinSymbol) (string, error)
	Chart(ctx context.Context, symbol domain.CoinSymbol, days int) (domain.Chart, error)
	Subscribe() chan events.QuoteSnapshot
	Unsubscribe(ch chan events.QuoteSnapshot)
}

type mode int

const (
	modePrices mode = iota
	modePrompt
	modeAlarms
	modeChart
)

type promptKind int

const (
	promptAddCoin promptKind = iota
	promptRemoveCoin
	promptAddAlarm
	promptEditAlarm
)

// Model is the Bubble Tea model of the widget.
type Model struct {
	ctx  context.Context
	ctrl controller
	sub  chan events.QuoteSnapshot
	open func(string) error

	mode     mode
	prompt   promptKind
	input    textinput.Model
	spinner  spinner.Model
	busy     bool
	coins    []domain.DisplayDescriptor
	interval domain.ChangeInterval
	updated  time.Time
	cursor   int
	alarmIdx int
	chart    domain.Chart
	status   string
	notice   string
	width    int
}

// New creates the model and subscribes it to quote snapshots.
func New(ctx context.Context, ctrl controller) Model {
	ti := textinput.New()
	ti.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(green)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		sub:      ctrl.Subscribe(),
		open:     openBrowser,
		input:    ti,
		spinner:  sp,
		coins:    ctrl.Descriptors(),
		interval: ctrl.ChangeInterval(),
	}
}

// Run starts the program in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, ctrl controller) error {
	m := New(ctx, ctrl)
	defer ctrl.Unsubscribe(m.sub)

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.sub), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.coins = msg.Coins
		m.interval = msg.Interval
		m.updated = msg.Timestamp
		m.status = msg.Status
		if len(msg.Fired) > 0 {
			m.notice = msg.Fired[len(msg.Fired)-1].Message
			if len(msg.Fired) > 1 {
				m.notice += fmt.Sprintf(" (+%d more)", len(msg.Fired)-1)
			}
		}
		m.clampCursor()
		return m, waitForSnapshot(m.sub)

	case subscriptionClosedMsg:
		return m, nil

	case refreshDoneMsg:
		m.busy = false
		if msg.err != nil && !errors.Is(msg.err, widget.ErrRefreshInProgress) {
			m.status = widget.StatusFetchFailed
		}
		return m, nil

	case coinAddedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.notice = fmt.Sprintf("%s added", msg.symbol)
		}
		m.coins = m.ctrl.Descriptors()
		return m, nil

	case chartMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.mode = modePrices
			return m, nil
		}
		m.chart = msg.chart
		m.mode = modeChart
		return m, nil

	case browserMsg:
		if msg.err != nil {
			m.notice = msg.url
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeAlarms:
			return m.updateAlarms(msg)
		case modeChart:
			if msg.String() == "q" || msg.Type == tea.KeyEsc {
				m.mode = modePrices
			}
			return m, nil
		default:
			return m.updatePrices(msg)
		}
	}

	return m, nil
}

func (m Model) updatePrices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.coins)-1 {
			m.cursor++
		}
	case "a":
		return m.startPrompt(promptAddCoin, "Add coin (3-5 letters, e.g. SOL): ")
	case "r":
		return m.startPrompt(promptRemoveCoin, "Remove coin: ")
	case "i":
		if err := m.ctrl.SetChangeInterval(m.interval.Toggle()); err != nil {
			m.status = err.Error()
		}
		m.interval = m.ctrl.ChangeInterval()
		m.coins = m.ctrl.Descriptors()
	case "f":
		next := domain.NextRefreshInterval(m.ctrl.RefreshInterval())
		if err := m.ctrl.SetRefreshInterval(next); err != nil {
			m.status = err.Error()
		} else {
			m.notice = "Refresh every " + domain.RefreshLabel(next)
		}
	case "u":
		m.busy = true
		m.status = ""
		return m, refreshCmd(m.ctx, m.ctrl)
	case "l":
		m.mode = modeAlarms
		m.alarmIdx = 0
	case "c", "enter":
		if sym, ok := m.selected(); ok {
			m.busy = true
			return m, chartCmd(m.ctx, m.ctrl, sym)
		}
	case "o":
		if sym, ok := m.selected(); ok {
			url, err := m.ctrl.CoinURL(sym)
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			return m, openURLCmd(m.open, url)
		}
	}
	return m, nil
}

func (m Model) updateAlarms(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	alarms := m.ctrl.Alarms()
	switch msg.String() {
	case "q", "esc":
		m.mode = modePrices
	case "up", "k":
		if m.alarmIdx > 0 {
			m.alarmIdx--
		}
	case "down", "j":
		if m.alarmIdx < len(alarms)-1 {
			m.alarmIdx++
		}
	case "n", "a":
		return m.startPrompt(promptAddAlarm, "New alarm (COIN TYPE THRESHOLD [SOUND]): ")
	case "e", "enter":
		if m.alarmIdx >= len(alarms) {
			return m, nil
		}
		next, cmd := m.startPrompt(promptEditAlarm, "Edit alarm (COIN TYPE THRESHOLD [SOUND]): ")
		edit := next.(Model)
		edit.input.SetValue(formatAlarmInput(alarms[m.alarmIdx]))
		edit.input.CursorEnd()
		return edit, cmd
	case "d", "x":
		if len(alarms) == 0 {
			return m, nil
		}
		removed, err := m.ctrl.RemoveAlarm(m.alarmIdx)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.notice = "Removed " + removed.String()
		if m.alarmIdx >= len(alarms)-1 && m.alarmIdx > 0 {
			m.alarmIdx--
		}
	}
	return m, nil
}

func (m Model) startPrompt(kind promptKind, label string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.mode = modePrompt
	m.status = ""
	m.input.Reset()
	m.input.Prompt = label
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = m.promptReturnMode()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = m.promptReturnMode()
		if value == "" {
			return m, nil
		}
		return m.submitPrompt(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) promptReturnMode() mode {
	if m.prompt == promptAddAlarm || m.prompt == promptEditAlarm {
		return modeAlarms
	}
	return modePrices
}

func (m Model) submitPrompt(value string) (tea.Model, tea.Cmd) {
	switch m.prompt {
	case promptAddCoin:
		m.busy = true
		return m, addCoinCmd(m.ctx, m.ctrl, value)
	case promptRemoveCoin:
		sym, err := m.ctrl.RemoveCoin(value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("%s removed", sym)
		m.coins = m.ctrl.Descriptors()
		m.clampCursor()
	case promptAddAlarm:
		rule, err := parseAlarmInput(value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		added, err := m.ctrl.AddAlarm(rule)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.notice = "Added " + added.String()
	case promptEditAlarm:
		rule, err := parseAlarmInput(value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		updated, err := m.ctrl.UpdateAlarm(m.alarmIdx, rule)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.notice = "Updated " + updated.String()
	}
	return m, nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.coins) {
		m.cursor = len(m.coins) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.CoinSymbol, bool) {
	if len(m.coins) == 0 {
		return "", false
	}
	return m.coins[m.cursor].Symbol, true
}
