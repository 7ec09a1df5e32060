// Package heatmap renders violation locations as a color-mapped density
// overlay.
package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

type Config struct {
	// Frame the coordinates were measured in.
	FrameWidth  int
	FrameHeight int
	// Histogram resolution.
	GridWidth  int
	GridHeight int
	// Size of the rendered image.
	OutputWidth  int
	OutputHeight int
	MaxPoints    int
	Sigma        float64
}

func DefaultConfig() Config {
	return Config{
		FrameWidth:   1280,
		FrameHeight:  720,
		GridWidth:    160,
		GridHeight:   120,
		OutputWidth:  640,
		OutputHeight: 480,
		MaxPoints:    5000,
		Sigma:        2,
	}
}

func (c Config) validate() error {
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.FrameWidth, c.FrameHeight)
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("invalid grid size %dx%d", c.GridWidth, c.GridHeight)
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		return fmt.Errorf("invalid output size %dx%d", c.OutputWidth, c.OutputHeight)
	}
	return nil
}

type Point struct {
	X float64
	Y float64
}

type Result struct {
	NoData  bool   `json:"noData"`
	Path    string `json:"path,omitempty"`
	Points  int    `json:"points"`
	Dropped int    `json:"dropped"`
}

type Generator struct {
	conf   Config
	logger *logrus.Entry
}

func NewGenerator(conf Config) (*Generator, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &Generator{conf: conf, logger: logrus.WithField("component", "heatmap")}, nil
}

// Truncate keeps the newest max points of an oldest-first slice.
func Truncate(points []Point, max int) ([]Point, int) {
	if max <= 0 || len(points) <= max {
		return points, 0
	}
	return points[len(points)-max:], len(points) - max
}

// Histogram accumulates points into grid cells. Coordinates outside the
// frame are clamped into the nearest edge cell.
func (g *Generator) Histogram(points []Point) [][]float64 {
	c := g.conf
	grid := make([][]float64, c.GridHeight)
	for y := range grid {
		grid[y] = make([]float64, c.GridWidth)
	}
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		cx := clampCell(p.X*float64(c.GridWidth)/float64(c.FrameWidth), c.GridWidth)
		cy := clampCell(p.Y*float64(c.GridHeight)/float64(c.FrameHeight), c.GridHeight)
		grid[cy][cx]++
	}
	return grid
}

func clampCell(v float64, n int) int {
	if v < 0 {
		return 0
	}
	if v >= float64(n) {
		return n - 1
	}
	return int(v)
}

// Render produces the overlay image. The image is nil and NoData is set when
// there is nothing to draw.
func (g *Generator) Render(points []Point) (*image.NRGBA, Result) {
	kept, dropped := Truncate(points, g.conf.MaxPoints)
	res := Result{Points: len(kept), Dropped: dropped}
	if len(kept) == 0 {
		res.NoData = true
		return nil, res
	}

	grid := blur(g.Histogram(kept), g.conf.Sigma)

	maxVal := 0.0
	for _, row := range grid {
		for _, v := range row {
			maxVal = math.Max(maxVal, v)
		}
	}
	if maxVal == 0 {
		res.NoData = true
		return nil, res
	}

	small := image.NewNRGBA(image.Rect(0, 0, g.conf.GridWidth, g.conf.GridHeight))
	for y, row := range grid {
		for x, v := range row {
			small.SetNRGBA(x, y, colorAt(v/maxVal))
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, g.conf.OutputWidth, g.conf.OutputHeight))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out, res
}

// Generate renders points and writes a PNG to outputPath. The file is
// replaced atomically; nothing is written when there is no data.
func (g *Generator) Generate(points []Point, outputPath string) (Result, error) {
	img, res := g.Render(points)
	if res.NoData {
		g.logger.Infof("no violation points, skip heatmap")
		return res, nil
	}
	if res.Dropped > 0 {
		g.logger.Infof("heatmap input capped, dropped %d oldest points", res.Dropped)
	}

	if err := writePNG(img, outputPath); err != nil {
		return Result{}, err
	}
	res.Path = outputPath
	return res, nil
}

func writePNG(img image.Image, outputPath string) (err error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create heatmap dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".heatmap-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), outputPath); err != nil {
		return fmt.Errorf("rename heatmap: %w", err)
	}
	return nil
}

type stop struct {
	t          float64
	r, g, b, a float64
}

// transparent -> blue -> cyan -> yellow -> red
var stops = []stop{
	{0, 0, 0, 0, 0},
	{0.25, 0, 0, 255, 0.2},
	{0.5, 0, 255, 255, 0.4},
	{0.75, 255, 255, 0, 0.6},
	{1, 255, 0, 0, 0.8},
}

func colorAt(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	for i := 1; i < len(stops); i++ {
		if t > stops[i].t {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		f := (t - lo.t) / (hi.t - lo.t)
		return color.NRGBA{
			R: uint8(math.Round(lo.r + f*(hi.r-lo.r))),
			G: uint8(math.Round(lo.g + f*(hi.g-lo.g))),
			B: uint8(math.Round(lo.b + f*(hi.b-lo.b))),
			A: uint8(math.Round(255 * (lo.a + f*(hi.a-lo.a)))),
		}
	}
	last := stops[len(stops)-1]
	return color.NRGBA{R: uint8(last.r), G: uint8(last.g), B: uint8(last.b), A: uint8(255 * last.a)}
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// blur applies a separable Gaussian with zero padding at the borders.
func blur(grid [][]float64, sigma float64) [][]float64 {
	if sigma <= 0 || len(grid) == 0 {
		return grid
	}
	k := gaussianKernel(sigma)
	r := len(k) / 2
	h, w := len(grid), len(grid[0])

	tmp := make([][]float64, h)
	for y := 0; y < h; y++ {
		tmp[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			s := 0.0
			for i, kv := range k {
				if xx := x + i - r; xx >= 0 && xx < w {
					s += kv * grid[y][xx]
				}
			}
			tmp[y][x] = s
		}
	}

	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			s := 0.0
			for i, kv := range k {
				if yy := y + i - r; yy >= 0 && yy < h {
					s += kv * tmp[yy][x]
				}
			}
			out[y][x] = s
		}
	}
	return out
}
