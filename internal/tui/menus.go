package tui

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/present"
)

// Terminal layout constants.
const (
	// TerminalEdgeMargin is the space left between menus and the terminal edge.
	TerminalEdgeMargin = 4

	// MinMenuWidth is the minimum usable width for menu content.
	MinMenuWidth = 40

	// BriefCharLimit bounds the brief typed in the prompt.
	BriefCharLimit = 4000
)

// customPreset is the select value for typing a brief from scratch.
const customPreset = "__custom__"

// Option represents a selectable menu option.
type Option struct {
	Label       string
	Description string
	Value       string
}

// MenuConfig holds configuration for menu components.
type MenuConfig struct {
	// Width is the maximum width. Zero adapts to the terminal.
	Width int
	// Accessible enables screen-reader mode.
	Accessible bool
	// ShowKeyHints shows the key help line.
	ShowKeyHints bool
}

// NewMenuConfig returns defaults; ACCESSIBLE in the environment turns on
// accessible mode.
func NewMenuConfig() *MenuConfig {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	return &MenuConfig{
		Width:        DefaultBoxWidth,
		Accessible:   accessible,
		ShowKeyHints: true,
	}
}

// IsInteractive reports whether stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// adaptWidth fits maxWidth to the terminal.
func adaptWidth(maxWidth int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // G115: file descriptors fit in int
	if err != nil || width <= 0 {
		if maxWidth <= 0 {
			return DefaultBoxWidth
		}
		return maxWidth
	}
	available := width - TerminalEdgeMargin
	if maxWidth > 0 && maxWidth < available {
		return maxWidth
	}
	if available < MinMenuWidth {
		return MinMenuWidth
	}
	return available
}

// runForm runs groups as one form. A user abort maps to ErrMenuCanceled.
func runForm(cfg *MenuConfig, errorContext string, groups ...*huh.Group) error {
	if !IsInteractive() {
		return errors.ErrInteractiveRequired
	}
	CheckNoColor()

	form := huh.NewForm(groups...).
		WithTheme(LunaTheme()).
		WithWidth(adaptWidth(cfg.Width)).
		WithAccessible(cfg.Accessible).
		WithShowHelp(cfg.ShowKeyHints)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return errors.ErrMenuCanceled
		}
		return fmt.Errorf("%s: %w", errorContext, err)
	}
	return nil
}

// LunaTheme returns a huh theme using the luna colors.
func LunaTheme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(ColorSuccess)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Help.Ellipsis = t.Help.Ellipsis.Foreground(ColorMuted)
	return t
}

// Select presents a single-selection menu and returns the chosen value.
func Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", errors.Wrap(errors.ErrInvalidArgument, "no options to select from")
	}
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		label := o.Label
		if o.Description != "" {
			label = fmt.Sprintf("%s - %s", o.Label, o.Description)
		}
		opts[i] = huh.NewOption(label, o.Value)
	}

	var selected string
	field := huh.NewSelect[string]().Title(title).Options(opts...).Value(&selected)
	if err := runForm(NewMenuConfig(), "select", huh.NewGroup(field)); err != nil {
		return "", err
	}
	return selected, nil
}

// BriefAnswers is what the generate prompt collects.
type BriefAnswers struct {
	Brief       string
	Template    domain.Template
	ProjectName string
}

// TemplateOptions lists every project template as a menu option.
func TemplateOptions() []Option {
	templates := domain.Templates()
	opts := make([]Option, len(templates))
	for i, t := range templates {
		opts[i] = Option{Label: t.DisplayName(), Description: t.Description(), Value: string(t)}
	}
	return opts
}

// PromptBrief asks for a brief, optionally starting from a preset, then for
// the template and an optional project name.
func PromptBrief(presets []present.Preset) (BriefAnswers, error) {
	cfg := NewMenuConfig()
	answers := BriefAnswers{Template: domain.TemplateCLI}

	if len(presets) > 0 {
		choice := customPreset
		opts := []huh.Option[string]{huh.NewOption("Write my own brief", customPreset)}
		for _, p := range presets {
			opts = append(opts, huh.NewOption(p.Name, p.Name))
		}
		pick := huh.NewSelect[string]().
			Title("Start from an example?").
			Options(opts...).
			Value(&choice)
		if err := runForm(cfg, "preset prompt", huh.NewGroup(pick)); err != nil {
			return BriefAnswers{}, err
		}
		for _, p := range presets {
			if p.Name == choice {
				answers.Brief = p.Brief
				answers.Template = p.Template
			}
		}
	}

	tmpl := string(answers.Template)
	templateOpts := make([]huh.Option[string], 0, len(domain.Templates()))
	for _, o := range TemplateOptions() {
		templateOpts = append(templateOpts, huh.NewOption(o.Label, o.Value))
	}

	group := huh.NewGroup(
		huh.NewText().
			Title("Describe the project").
			Placeholder("A CLI that converts CSV files to JSON...").
			CharLimit(BriefCharLimit).
			Value(&answers.Brief).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.ErrEmptyBrief
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Template").
			Options(templateOpts...).
			Value(&tmpl),
		huh.NewInput().
			Title("Project name").
			Description("Leave empty to derive it from the brief.").
			Value(&answers.ProjectName),
	)
	if err := runForm(cfg, "brief prompt", group); err != nil {
		return BriefAnswers{}, err
	}

	answers.Brief = strings.TrimSpace(answers.Brief)
	answers.ProjectName = strings.TrimSpace(answers.ProjectName)
	answers.Template = domain.Template(tmpl)
	return answers, nil
}
