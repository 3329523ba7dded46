package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/boristopalov/wumpus/pkg/core"
	"github.com/boristopalov/wumpus/pkg/messaging"
)

const clearScreen = "\033[H\033[2J"

// Renderer draws frames as text, northernmost row first.
type Renderer struct {
	out   io.Writer
	au    aurora.Aurora
	clear bool
}

type RendererParams struct {
	Colors      bool
	ClearScreen bool
}

type RendererOption func(*RendererParams)

func WithColors(on bool) RendererOption {
	return func(p *RendererParams) {
		p.Colors = on
	}
}

// WithClearScreen redraws each frame in place instead of scrolling.
func WithClearScreen(on bool) RendererOption {
	return func(p *RendererParams) {
		p.ClearScreen = on
	}
}

func New(out io.Writer, opts ...RendererOption) *Renderer {
	params := &RendererParams{Colors: true}
	for _, opt := range opts {
		opt(params)
	}
	return &Renderer{
		out:   out,
		au:    aurora.NewAurora(params.Colors),
		clear: params.ClearScreen,
	}
}

// Draw writes one frame.
func (r *Renderer) Draw(f *core.Frame) error {
	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}

	w, h := f.Beliefs.Width(), f.Beliefs.Height()
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			b.WriteString(r.cell(f, core.V(x, y)))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "Score: %d\n", r.au.Blue(f.Score))
	if f.Phase.Terminal() {
		fmt.Fprintf(&b, "GAME OVER!   %s\n", r.au.Bold(f.Phase.Goal()))
	} else {
		fmt.Fprintf(&b, "Percepts: %s\n", r.au.Blue(f.Percepts.String()))
		fmt.Fprintf(&b, "Goal: %s\n", r.au.Blue(f.Phase.Goal()))
	}

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}
	return nil
}

func (r *Renderer) cell(f *core.Frame, v core.Vec) string {
	glyph := r.glyph(f, v)
	belief, _ := f.Beliefs.Get(v)
	switch belief {
	case core.Unknown:
		return " " + glyph + " "
	case core.Safe:
		return r.au.Green("[").String() + glyph + r.au.Green("]").String()
	default:
		return r.au.Red("[").String() + glyph + r.au.Red("]").String()
	}
}

var arrows = map[core.Direction]string{
	core.East:  ">",
	core.South: "v",
	core.West:  "<",
	core.North: "^",
}

func (r *Renderer) glyph(f *core.Frame, v core.Vec) string {
	if v.Equals(f.Position) {
		return r.au.Cyan(arrows[f.Orientation]).Bold().String()
	}
	content, _ := f.Cells.Get(v)
	switch content {
	case core.Wumpus:
		return r.au.Red("W").String()
	case core.DeadWumpus:
		return r.au.Gray(12, "x").String()
	case core.Pit:
		return r.au.Magenta("P").String()
	case core.Gold:
		return r.au.Yellow("G").String()
	}
	return "."
}

// Watch draws every frame it receives until the episode finishes, the channel closes or ctx ends.
func (r *Renderer) Watch(ctx context.Context, events <-chan messaging.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if evt.Frame != nil {
				if err := r.Draw(evt.Frame); err != nil {
					return err
				}
			}
			if evt.Kind == messaging.EpisodeFinished {
				return nil
			}
		}
	}
}
