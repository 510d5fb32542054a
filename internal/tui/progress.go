package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lunacore/luna/internal/domain"
)

// stageOrder lists the pipeline stages shown in progress lines.
var stageOrder = []domain.Stage{ //nolint:gochecknoglobals // Fixed stage order
	domain.StagePlanning,
	domain.StageImplementing,
	domain.StageTesting,
}

// ProgressBar wraps the bubbles progress bar with luna colors.
type ProgressBar struct {
	bar progress.Model
}

// NewProgressBar creates a bar of the given width. NO_COLOR gets a solid fill.
func NewProgressBar(width int) *ProgressBar {
	var bar progress.Model
	if HasColorSupport() {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithScaledGradient("#0087AF", "#00D7FF"),
			progress.WithoutPercentage(),
		)
	} else {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithSolidFill("#808080"),
			progress.WithoutPercentage(),
		)
	}
	return &ProgressBar{bar: bar}
}

// Render draws the bar at percent, clamped to [0, 1].
func (pb *ProgressBar) Render(percent float64) string {
	switch {
	case percent < 0:
		percent = 0
	case percent > 1:
		percent = 1
	}
	return pb.bar.ViewAs(percent)
}

// StageIndex returns the 1-based position of stage, or 0 if it is not a
// pipeline step. Done counts as the last step.
func StageIndex(stage domain.Stage) int {
	if stage == domain.StageDone {
		return len(stageOrder)
	}
	for i, s := range stageOrder {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// StageLine renders "<bar> 2/3 Implementing" for a stage that has started.
func StageLine(pb *ProgressBar, stage domain.Stage) string {
	idx := StageIndex(stage)
	total := len(stageOrder)
	// A started stage counts as half done.
	percent := (float64(idx) - 0.5) / float64(total)
	if stage == domain.StageDone {
		percent = 1
	}
	name := cases.Title(language.English).String(string(stage))
	return fmt.Sprintf("%s %d/%d %s", pb.Render(percent), idx, total, name)
}
