// Package detect holds the detection record produced by the object detector
// and consumed by the violation classifier.
package detect

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidDetection = errors.New("invalid detection")

// Box is an axis aligned rectangle in frame pixels, corner form.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// BoxFromXYWH builds a box from its top-left corner and size.
func BoxFromXYWH(x, y, w, h float64) Box {
	return Box{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

func (b Box) Width() float64 {
	return b.X2 - b.X1
}

func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

func (b Box) Area() float64 {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

func (b Box) Centroid() (float64, float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Intersect returns the overlapping region; the result has zero area when
// the boxes are disjoint.
func (b Box) Intersect(o Box) Box {
	r := Box{
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
		X2: math.Min(b.X2, o.X2),
		Y2: math.Min(b.Y2, o.Y2),
	}
	if r.X2 < r.X1 {
		r.X2 = r.X1
	}
	if r.Y2 < r.Y1 {
		r.Y2 = r.Y1
	}
	return r
}

// ContainedIn is the fraction of b's area that lies inside o.
func (b Box) ContainedIn(o Box) float64 {
	area := b.Area()
	if area == 0 {
		return 0
	}
	return b.Intersect(o).Area() / area
}

func (b Box) valid() bool {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Width() > 0 && b.Height() > 0
}

type Detection struct {
	Label      string  `json:"label"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

func (d Detection) Validate() error {
	if d.Label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidDetection)
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of [0,1]", ErrInvalidDetection, d.Confidence)
	}
	if !d.Box.valid() {
		return fmt.Errorf("%w: degenerate box %+v", ErrInvalidDetection, d.Box)
	}
	return nil
}

// Valid filters out detections that fail Validate.
func Valid(dets []Detection) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Validate() == nil {
			out = append(out, d)
		}
	}
	return out
}
