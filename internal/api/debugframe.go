package api

import (
	"fmt"
	"image/color"
	"net/http"

	"ringside/internal/arena"

	"github.com/fogleman/gg"
)

const (
	frameWidth  = 960
	frameHeight = 360
)

// handleDebugFrame renders the current match state as a top-down PNG.
// One frame per request, intended for eyeballing fighter positions and
// combat state without a client.
func (h *routerHandlers) handleDebugFrame(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "No snapshot yet", http.StatusServiceUnavailable)
		return
	}

	dc := gg.NewContext(frameWidth, frameHeight)
	drawRing(dc)
	for i := range snap.Fighters {
		drawFighter(dc, &snap.Fighters[i])
	}
	drawScore(dc, snap)

	w.Header().Set("Content-Type", "image/png")
	if err := dc.EncodePNG(w); err != nil {
		writeError(w, "Render failed", http.StatusInternalServerError)
	}
}

// frameX maps an arena Z coordinate to a pixel column.
func frameX(z float64) float64 {
	// Arena spans [-4, 4]; leave a margin on both sides.
	return frameWidth/2 + z*((frameWidth-120)/8.0)
}

func drawRing(dc *gg.Context) {
	// Canvas
	dc.SetColor(color.RGBA{18, 20, 26, 255})
	dc.Clear()

	// Ring floor
	dc.SetColor(color.RGBA{38, 42, 52, 255})
	dc.DrawRectangle(40, 80, frameWidth-80, frameHeight-160)
	dc.Fill()

	// Ropes
	dc.SetColor(color.RGBA{200, 200, 200, 120})
	dc.SetLineWidth(2)
	for _, y := range []float64{90, 110, frameHeight - 110, frameHeight - 90} {
		dc.DrawLine(40, y, frameWidth-40, y)
		dc.Stroke()
	}

	// Center line
	dc.SetColor(color.RGBA{255, 255, 255, 40})
	dc.DrawLine(frameWidth/2, 80, frameWidth/2, frameHeight-80)
	dc.Stroke()
}

func drawFighter(dc *gg.Context, f *arena.FighterSnapshot) {
	x := frameX(f.Z)
	y := float64(frameHeight / 2)
	radius := 24.0

	// Shadow
	dc.SetColor(color.RGBA{0, 0, 0, 128})
	dc.DrawCircle(x, y+8, radius)
	dc.Fill()

	// Body, corner colored
	if f.Corner == "red" {
		dc.SetColor(color.RGBA{220, 60, 60, 255})
	} else {
		dc.SetColor(color.RGBA{70, 110, 230, 255})
	}
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	// Defense shows as a ring, punches as a glove dot toward the opponent
	if f.IsDefending {
		dc.SetColor(color.RGBA{90, 220, 160, 255})
		dc.SetLineWidth(4)
		dc.DrawCircle(x, y, radius+8)
		dc.Stroke()
	}
	if f.IsPunching {
		dc.SetColor(color.RGBA{255, 210, 80, 255})
		dc.DrawCircle(x+f.Facing*(radius+14), y, 8)
		dc.Fill()
	}

	// Border
	dc.SetColor(color.White)
	dc.SetLineWidth(3)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()

	// Name and state
	dc.SetColor(color.RGBA{235, 235, 235, 255})
	dc.DrawStringAnchored(f.Name, x, y+radius+22, 0.5, 0.5)
	dc.SetColor(color.RGBA{160, 160, 160, 255})
	label := f.StateTag
	if f.Attack != "" && (f.IsPunching || f.StateTag == "hold") {
		label = f.Attack
	}
	dc.DrawStringAnchored(label, x, y+radius+40, 0.5, 0.5)
}

func drawScore(dc *gg.Context, snap *arena.MatchSnapshot) {
	dc.SetColor(color.RGBA{235, 235, 235, 255})
	dc.DrawStringAnchored(fmt.Sprintf("tick %d", snap.TickNumber), frameWidth/2, 30, 0.5, 0.5)

	tally := ""
	for i := range snap.Fighters {
		f := &snap.Fighters[i]
		if tally != "" {
			tally += "   "
		}
		tally += fmt.Sprintf("%s %d", f.Name, f.HitsLanded)
	}
	dc.DrawStringAnchored(tally, frameWidth/2, 50, 0.5, 0.5)
}
