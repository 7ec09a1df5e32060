package monitor

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"injuryshield/internal/detect"
	"injuryshield/internal/ppe"
)

var (
	colorCompliant = color.RGBA{0, 200, 0, 255}
	colorViolation = color.RGBA{230, 0, 0, 255}
	colorText      = color.RGBA{255, 255, 255, 255}
)

func rect(b detect.Box) image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

func drawLabel(frame *gocv.Mat, text string, at image.Point, bg color.RGBA) {
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 0.5, 1)
	gocv.Rectangle(frame, image.Rect(at.X, at.Y-size.Y-8, at.X+size.X+4, at.Y), bg, -1)
	gocv.PutText(frame, text, image.Pt(at.X+2, at.Y-4), gocv.FontHersheySimplex, 0.5, colorText, 1)
}

// Annotate returns a copy of frame with people, violations and the frame
// status drawn on it.
func Annotate(frame *gocv.Mat, a ppe.FrameAnalysis) gocv.Mat {
	out := frame.Clone()

	for _, p := range a.People {
		c := colorCompliant
		if !p.Compliant() {
			c = colorViolation
		}
		gocv.Rectangle(&out, rect(p.Box), c, 2)
		drawLabel(&out, fmt.Sprintf("person %.2f", p.Confidence), image.Pt(int(p.Box.X1), int(p.Box.Y1)), c)
	}

	for _, v := range a.Violations {
		gocv.Rectangle(&out, rect(v.Box), colorViolation, 2)
		drawLabel(&out, fmt.Sprintf("%s %.2f", v.Type, v.Confidence), image.Pt(int(v.Box.X1), int(v.Box.Y2)+16), colorViolation)
	}

	statusColor := colorCompliant
	if len(a.Violations) > 0 {
		statusColor = colorViolation
	}
	drawLabel(&out, a.Status, image.Pt(10, 30), statusColor)
	return out
}
