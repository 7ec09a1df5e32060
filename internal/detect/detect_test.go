package detect

import (
	"errors"
	"math"
	"testing"
)

func TestDetectionValidate(t *testing.T) {
	good := Box{X1: 10, Y1: 10, X2: 50, Y2: 90}
	tests := []struct {
		name string
		det  Detection
		ok   bool
	}{
		{"valid", Detection{Label: "person", Box: good, Confidence: 0.9}, true},
		{"confidence bounds", Detection{Label: "helmet", Box: good, Confidence: 1}, true},
		{"empty label", Detection{Box: good, Confidence: 0.9}, false},
		{"negative confidence", Detection{Label: "person", Box: good, Confidence: -0.1}, false},
		{"confidence above one", Detection{Label: "person", Box: good, Confidence: 1.2}, false},
		{"nan confidence", Detection{Label: "person", Box: good, Confidence: math.NaN()}, false},
		{"zero width", Detection{Label: "person", Box: Box{X1: 5, Y1: 5, X2: 5, Y2: 20}, Confidence: 0.9}, false},
		{"inverted box", Detection{Label: "person", Box: Box{X1: 50, Y1: 50, X2: 10, Y2: 10}, Confidence: 0.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.det.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidDetection) {
				t.Fatalf("expected ErrInvalidDetection, got %v", err)
			}
		})
	}
}

func TestBoxContainedIn(t *testing.T) {
	person := BoxFromXYWH(0, 0, 100, 200)
	helmet := BoxFromXYWH(25, -10, 50, 40)

	got := helmet.ContainedIn(person)
	if math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected 0.75 containment, got %v", got)
	}

	far := BoxFromXYWH(300, 300, 10, 10)
	if far.ContainedIn(person) != 0 {
		t.Fatalf("disjoint boxes should not overlap")
	}

	x, y := person.Centroid()
	if x != 50 || y != 100 {
		t.Fatalf("unexpected centroid %v,%v", x, y)
	}
}

func TestDecodeRows(t *testing.T) {
	labels := []string{"person", "helmet", ""}
	raw := []float32{
		10, 20, 110, 220, 0.9, 0,
		30, 20, 60, 50, 0.3, 1,
		30, 20, 60, 50, 0.8, 2,
		30, 20, 60, 50, 0.8, 7,
		30, 20, 60, 50, 0.7, 1,
		1, 2, 3,
	}

	got := DecodeRows(raw, labels, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 detections, got %+v", got)
	}
	if got[0].Label != "person" || got[0].Box.X2 != 110 || got[1].Label != "helmet" {
		t.Fatalf("unexpected detections %+v", got)
	}
}

func TestLoadLabels(t *testing.T) {
	labels, err := LoadLabels(" person, helmet ,vest", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 3 || labels[1] != "helmet" {
		t.Fatalf("unexpected labels %q", labels)
	}

	if _, err := LoadLabels("", ""); err == nil {
		t.Fatalf("expected error for empty labels")
	}
}
