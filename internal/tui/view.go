package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeAlarms:
		b.WriteString(m.alarmsView())
	case modeChart:
		b.WriteString(m.chartView())
	default:
		b.WriteString(m.pricesView())
	}

	if m.mode == modePrompt {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " working...")
	}
	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status))
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice))
	}

	b.WriteString("\n" + helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) pricesView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("COINWATCH  change %s", m.interval)))
	b.WriteString("\n")

	if len(m.coins) == 0 {
		b.WriteString("no prices yet\n")
	}
	for i, d := range m.coins {
		cursor := "  "
		if i == m.cursor && m.mode != modePrompt {
			cursor = cursorStyle.Render("> ")
		}
		price := "$" + d.IntegerPart + fractionStyle.Render(d.FractionalPart)
		change := changeStyle(d.Color).Render(fmt.Sprintf("%s %s%%", d.Arrow.Glyph(), d.PercentChange.StringFixed(2)))
		b.WriteString(cursor + symbolStyle.Render(d.Symbol.String()) + priceStyle.Render(price) + "  " + change + "\n")
	}

	if !m.updated.IsZero() {
		b.WriteString(helpStyle.Render("updated " + m.updated.Local().Format("15:04:05")))
	}
	return b.String()
}

func (m Model) alarmsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ALARMS"))
	b.WriteString("\n")

	alarms := m.ctrl.Alarms()
	if len(alarms) == 0 {
		b.WriteString("no alarms\n")
	}
	for i, a := range alarms {
		cursor := "  "
		if i == m.alarmIdx {
			cursor = cursorStyle.Render("> ")
		}
		line := a.String()
		if a.Sound != "" {
			line += "  ♪ " + a.Sound
		}
		b.WriteString(cursor + line + "\n")
	}
	b.WriteString(helpStyle.Render("types: above, below, up (24h %), down (24h %)"))
	return b.String()
}

func (m Model) chartView() string {
	c := m.chart
	if len(c.Points) == 0 {
		return titleStyle.Render(c.Symbol.String()) + "\nno data\n"
	}

	first, last := c.Points[0], c.Points[len(c.Points)-1]
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s  last %d days", c.Symbol, len(c.Points))),
		c.Sparkline(),
		fmt.Sprintf("%s  %s", first.Time.Format("Jan 02"), priceText(first.Close)),
		fmt.Sprintf("%s  %s", last.Time.Format("Jan 02"), priceText(last.Close)),
	}
	if len(c.SMA) > 0 {
		lines = append(lines, fmt.Sprintf("SMA(%d)  %s", c.Period, priceText(c.SMA[len(c.SMA)-1])))
	}
	if len(c.EMA) > 0 {
		lines = append(lines, fmt.Sprintf("EMA(%d)  %s", c.Period, priceText(c.EMA[len(c.EMA)-1])))
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func priceText(p decimal.Decimal) string {
	integer, fraction := domain.FormatPrice(p)
	return "$" + integer + fraction
}

func (m Model) help() string {
	switch m.mode {
	case modePrompt:
		return "enter confirm • esc cancel"
	case modeAlarms:
		return "n new • e edit • d delete • ↑/↓ select • esc back"
	case modeChart:
		return "esc back"
	default:
		return fmt.Sprintf("a add • r remove • i 24h/7d • f refresh %s • u update • l alarms • c chart • o info • q quit",
			domain.RefreshLabel(m.ctrl.RefreshInterval()))
	}
}
