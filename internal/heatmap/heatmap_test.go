package heatmap

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testConfig() Config {
	return Config{
		FrameWidth:   100,
		FrameHeight:  100,
		GridWidth:    10,
		GridHeight:   10,
		OutputWidth:  40,
		OutputHeight: 40,
		MaxPoints:    3,
		Sigma:        1,
	}
}

func TestHistogramClipsOutOfBounds(t *testing.T) {
	g, err := NewGenerator(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	grid := g.Histogram([]Point{
		{X: -50, Y: -5},
		{X: 1000, Y: 1000},
		{X: 100, Y: 0},
		{X: 55, Y: 12},
	})

	if grid[0][0] != 1 {
		t.Fatalf("negative point must land in the top-left cell")
	}
	if grid[9][9] != 1 {
		t.Fatalf("far point must land in the bottom-right cell")
	}
	if grid[0][9] != 1 {
		t.Fatalf("point on the right edge must land in the last column")
	}
	if grid[1][5] != 1 {
		t.Fatalf("in-frame point mapped to the wrong cell")
	}
}

func TestTruncateDropsOldest(t *testing.T) {
	points := []Point{{X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}
	kept, dropped := Truncate(points, 3)
	if dropped != 2 || len(kept) != 3 || kept[0].X != 3 || kept[2].X != 5 {
		t.Fatalf("unexpected truncation %v dropped=%d", kept, dropped)
	}
	if kept, dropped := Truncate(points, 0); len(kept) != 5 || dropped != 0 {
		t.Fatalf("zero max must disable truncation")
	}
}

func TestGenerateNoData(t *testing.T) {
	g, _ := NewGenerator(testConfig())
	out := filepath.Join(t.TempDir(), "heatmap.png")

	res, err := g.Generate(nil, out)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NoData {
		t.Fatalf("expected NoData result")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("nothing must be written without data")
	}
}

func TestGenerateWritesPNG(t *testing.T) {
	g, _ := NewGenerator(testConfig())
	out := filepath.Join(t.TempDir(), "nested", "heatmap.png")

	res, err := g.Generate([]Point{{X: 10, Y: 10}, {X: 50, Y: 50}, {X: 52, Y: 48}, {X: 500, Y: -3}}, out)
	if err != nil {
		t.Fatal(err)
	}
	if res.NoData || res.Points != 3 || res.Dropped != 1 || res.Path != out {
		t.Fatalf("unexpected result %+v", res)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("unexpected output size %v", b)
	}

	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestColorRamp(t *testing.T) {
	if c := colorAt(0); c.A != 0 {
		t.Fatalf("zero density must be transparent, got %+v", c)
	}
	if c := colorAt(1); c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("peak density must be red, got %+v", c)
	}
	if c := colorAt(0.25); c.B != 255 || c.R != 0 {
		t.Fatalf("low density must be blue, got %+v", c)
	}
}

func TestNewGeneratorRejectsBadConfig(t *testing.T) {
	conf := testConfig()
	conf.GridWidth = 0
	if _, err := NewGenerator(conf); err == nil {
		t.Fatalf("expected error for empty grid")
	}
}
