package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"instant-translator/models"
	appTheme "instant-translator/ui/theme"
)

// Step is one dot on the stage indicator.
type Step struct {
	Stage models.Stage
	Label string
}

// DefaultSteps returns the pipeline stages a request goes through.
func DefaultSteps() []Step {
	return []Step{
		{Stage: models.StageValidating, Label: "Check"},
		{Stage: models.StageEnsuringModel, Label: "Model"},
		{Stage: models.StageTranslating, Label: "Translate"},
	}
}

// StageProgress shows where the latest request is in the pipeline, and a
// one-line status below the dots.
type StageProgress struct {
	widget.BaseWidget

	Steps  []Step
	Stage  models.Stage
	Failed bool
	Status string
}

// NewStageProgress creates an idle indicator.
func NewStageProgress() *StageProgress {
	p := &StageProgress{
		Steps: DefaultSteps(),
		Stage: models.StageIdle,
	}
	p.ExtendBaseWidget(p)
	return p
}

// SetRequest shows the stage and status of req.
func (p *StageProgress) SetRequest(req *models.TranslationRequest) {
	p.Stage = req.Stage
	p.Failed = req.Stage == models.StageCompleted && req.Result.IsErr()
	p.Status = req.StatusText()
	p.Refresh()
}

// Reset returns the indicator to idle.
func (p *StageProgress) Reset() {
	p.Stage = models.StageIdle
	p.Failed = false
	p.Status = ""
	p.Refresh()
}

// current returns the index of the active step, len(Steps) when completed,
// or -1 when idle.
func (p *StageProgress) current() int {
	if p.Stage == models.StageCompleted {
		return len(p.Steps)
	}
	for i, s := range p.Steps {
		if s.Stage == p.Stage {
			return i
		}
	}
	return -1
}

// CreateRenderer implements fyne.Widget
func (p *StageProgress) CreateRenderer() fyne.WidgetRenderer {
	dots := make([]*canvas.Circle, len(p.Steps))
	labels := make([]*canvas.Text, len(p.Steps))
	connectors := make([]*canvas.Rectangle, max(len(p.Steps)-1, 0))

	for i := range p.Steps {
		dots[i] = canvas.NewCircle(color.Transparent)
		labels[i] = canvas.NewText(p.Steps[i].Label, color.White)
		labels[i].TextSize = 11
		labels[i].Alignment = fyne.TextAlignCenter
		if i < len(p.Steps)-1 {
			connectors[i] = canvas.NewRectangle(color.Transparent)
		}
	}

	status := canvas.NewText("", color.White)
	status.TextSize = 12

	r := &stageProgressRenderer{
		dots:       dots,
		labels:     labels,
		connectors: connectors,
		status:     status,
		widget:     p,
	}
	r.Refresh()
	return r
}

type stageProgressRenderer struct {
	dots       []*canvas.Circle
	labels     []*canvas.Text
	connectors []*canvas.Rectangle
	status     *canvas.Text
	widget     *StageProgress
}

const (
	stagePadding = float32(12)
	stageDotSize = float32(10)
)

func (r *stageProgressRenderer) Destroy() {}

func (r *stageProgressRenderer) Layout(size fyne.Size) {
	n := len(r.widget.Steps)
	if n == 0 {
		return
	}
	spacing := (size.Width - stagePadding*2) / float32(n)
	y := stagePadding

	center := func(i int) float32 {
		return stagePadding + float32(i)*spacing + spacing/2
	}

	for i := range r.widget.Steps {
		x := center(i)
		if i > 0 {
			prev := center(i - 1)
			width := x - prev - stageDotSize
			if width > 0 {
				r.connectors[i-1].Resize(fyne.NewSize(width, 2))
				r.connectors[i-1].Move(fyne.NewPos(prev+stageDotSize/2, y+(stageDotSize-2)/2))
			}
		}

		r.dots[i].Resize(fyne.NewSize(stageDotSize, stageDotSize))
		r.dots[i].Move(fyne.NewPos(x-stageDotSize/2, y))

		labelSize := r.labels[i].MinSize()
		r.labels[i].Move(fyne.NewPos(x-labelSize.Width/2, y+stageDotSize+6))
	}

	statusY := y + stageDotSize + 6 + r.labels[0].MinSize().Height + 8
	r.status.Move(fyne.NewPos(stagePadding, statusY))
}

func (r *stageProgressRenderer) MinSize() fyne.Size {
	labelHeight := float32(14)
	height := stagePadding + stageDotSize + 6 + labelHeight + 8 + r.status.MinSize().Height + stagePadding
	return fyne.NewSize(260, height)
}

func (r *stageProgressRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.connectors)+2*len(r.dots)+1)
	for _, c := range r.connectors {
		objs = append(objs, c)
	}
	for i := range r.dots {
		objs = append(objs, r.dots[i], r.labels[i])
	}
	return append(objs, r.status)
}

func (r *stageProgressRenderer) Refresh() {
	th := fyne.CurrentApp().Settings().Theme()
	variant := fyne.CurrentApp().Settings().ThemeVariant()

	current := r.widget.current()
	last := len(r.widget.Steps) - 1

	for i := range r.widget.Steps {
		var dot, label color.Color
		switch {
		case r.widget.Failed && (i == last || i == current):
			dot = th.Color(appTheme.ColorNameStageFailed, variant)
			label = th.Color(theme.ColorNameError, variant)
		case i < current:
			dot = th.Color(appTheme.ColorNameStageDone, variant)
			label = th.Color(theme.ColorNameForeground, variant)
		case i == current:
			dot = th.Color(appTheme.ColorNameStageActive, variant)
			label = th.Color(theme.ColorNamePrimary, variant)
		default:
			dot = th.Color(appTheme.ColorNameStagePending, variant)
			label = th.Color(appTheme.ColorNameTextSecondary, variant)
		}
		r.dots[i].FillColor = dot
		r.dots[i].Refresh()
		r.labels[i].Color = label
		r.labels[i].Refresh()

		if i > 0 {
			if i <= current {
				r.connectors[i-1].FillColor = th.Color(appTheme.ColorNameStageDone, variant)
			} else {
				r.connectors[i-1].FillColor = th.Color(appTheme.ColorNameStagePending, variant)
			}
			r.connectors[i-1].Refresh()
		}
	}

	r.status.Text = r.widget.Status
	if r.widget.Failed {
		r.status.Color = th.Color(theme.ColorNameError, variant)
	} else {
		r.status.Color = th.Color(appTheme.ColorNameTextSecondary, variant)
	}
	r.status.Refresh()
}
