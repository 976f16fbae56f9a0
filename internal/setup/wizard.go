// Package setup holds the interactive alarm wizard.
package setup

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// ErrCancelled user declined to save the alarm.
var ErrCancelled = errors.New("alarm setup cancelled by user")

// ErrEmptyWatchList there is no coin to attach an alarm to.
var ErrEmptyWatchList = errors.New("watch list is empty, add a coin first")

type ruleStore interface {
	Load() ([]domain.AlarmRule, error)
	Save(rules []domain.AlarmRule) error
}

// answers raw wizard input.
type answers struct {
	coin      string
	kind      domain.AlarmKind
	threshold string
	sound     string
}

// RunAlarmWizard asks for one alarm on a watch-list coin and appends it to the store.
func RunAlarmWizard(coins []domain.CoinSymbol, store ruleStore) (domain.AlarmRule, error) {
	if len(coins) == 0 {
		return domain.AlarmRule{}, ErrEmptyWatchList
	}

	var (
		a       answers
		confirm bool
	)

	screen("STEP 1: COIN")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Pick the coin to watch.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Coin").
				Options(coinOptions(coins)...).
				Value(&a.coin),
		),
	).Run()
	if err != nil {
		return domain.AlarmRule{}, err
	}

	screen("STEP 2: CONDITION")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.AlarmKind]().
				Title("Alarm type").
				Options(kindOptions()...).
				Value(&a.kind),
			huh.NewInput().
				Title("Threshold").
				Description("USD price, or percent for the 24h change types (e.g. 5)").
				Value(&a.threshold).
				Validate(ValidateThreshold),
		),
	).Run()
	if err != nil {
		return domain.AlarmRule{}, err
	}

	screen("STEP 3: SOUND")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sound file").
				Description("Optional path to a .wav played when the alarm fires").
				Value(&a.sound).
				Validate(ValidateSound),
		),
	).Run()
	if err != nil {
		return domain.AlarmRule{}, err
	}

	rule, err := a.rule()
	if err != nil {
		return domain.AlarmRule{}, err
	}

	screen("FINAL CONFIRMATION")
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary(rule)))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save alarm?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return domain.AlarmRule{}, err
	}
	if !confirm {
		return domain.AlarmRule{}, ErrCancelled
	}

	if err := appendRule(store, rule); err != nil {
		return domain.AlarmRule{}, err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("\n✓ Alarm saved: " + rule.String()))
	return rule, nil
}

func screen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("COINWATCH ALARMS"))
	fmt.Println(stepStyle.Render(step))
}

func coinOptions(coins []domain.CoinSymbol) []huh.Option[string] {
	opts := make([]huh.Option[string], len(coins))
	for i, c := range coins {
		opts[i] = huh.NewOption(c.String(), c.String())
	}
	return opts
}

func kindOptions() []huh.Option[domain.AlarmKind] {
	opts := make([]huh.Option[domain.AlarmKind], len(domain.AlarmKinds))
	for i, k := range domain.AlarmKinds {
		opts[i] = huh.NewOption(k.String(), k)
	}
	return opts
}

func (a answers) rule() (domain.AlarmRule, error) {
	threshold, err := domain.ParseThreshold(a.threshold)
	if err != nil {
		return domain.AlarmRule{}, err
	}
	if !a.kind.IsValid() {
		return domain.AlarmRule{}, errors.Wrapf(domain.ErrUnknownAlarmKind, "kind %d", int(a.kind))
	}

	return domain.AlarmRule{
		ID:        uuid.NewString(),
		Coin:      domain.NormalizeSymbol(a.coin),
		Kind:      a.kind,
		Threshold: threshold,
		Sound:     strings.TrimSpace(a.sound),
	}, nil
}

func summary(rule domain.AlarmRule) string {
	sound := rule.Sound
	if sound == "" {
		sound = "none"
	}
	return fmt.Sprintf("Coin: %s\nType: %s\nThreshold: %s\nSound: %s\n",
		rule.Coin, rule.Kind, rule.Threshold.String(), sound)
}

// appendRule refuses to overwrite a file it could not read.
func appendRule(store ruleStore, rule domain.AlarmRule) error {
	rules, err := store.Load()
	if err != nil {
		return errors.Wrap(err, "failed to read saved alarms")
	}
	return errors.Wrap(store.Save(append(rules, rule)), "failed to save alarms")
}

// ValidateThreshold accepts any decimal number.
func ValidateThreshold(s string) error {
	_, err := domain.ParseThreshold(s)
	return err
}

// ValidateSound accepts an empty path or an existing regular file.
func ValidateSound(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		return errors.Errorf("sound file %s not found", s)
	}
	if info.IsDir() {
		return errors.Errorf("%s is a directory", s)
	}
	return nil
}
