package ppe

import (
	"math"
	"testing"

	"injuryshield/internal/detect"
)

func det(label string, x, y, w, h, conf float64) detect.Detection {
	return detect.Detection{Label: label, Box: detect.BoxFromXYWH(x, y, w, h), Confidence: conf}
}

func TestClassifyCompliantWorker(t *testing.T) {
	dets := []detect.Detection{
		det("person", 100, 100, 100, 300, 0.95),
		det("helmet", 120, 90, 60, 40, 0.9),
		det("vest", 110, 180, 80, 100, 0.8),
	}

	got := Classify(dets, DefaultPolicy())
	if got.Persons != 1 || got.Compliant != 1 || got.Violating != 0 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.PPEWorn != 2 {
		t.Fatalf("expected 2 items worn, got %d", got.PPEWorn)
	}
	if len(got.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", got.Violations)
	}
	if got.Status != "Compliant" {
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestClassifyMissingEquipment(t *testing.T) {
	dets := []detect.Detection{
		det("person", 100, 100, 100, 300, 0.95),
		det("vest", 110, 180, 80, 100, 0.8),
		det("person", 600, 100, 100, 300, 0.9),
		det("NO-Hardhat", 620, 95, 60, 40, 0.7),
		det("NO-Hardhat", 625, 95, 60, 40, 0.6),
	}

	got := Classify(dets, DefaultPolicy())
	if got.Persons != 2 || got.Compliant != 0 || got.Violating != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.Compliant+got.Violating > got.Persons {
		t.Fatalf("compliant + violating exceeds persons")
	}

	byType := map[ViolationType]int{}
	for _, v := range got.Violations {
		byType[v.Type]++
	}
	if byType["no-helmet"] != 2 || byType["no-vest"] != 1 {
		t.Fatalf("unexpected violations: %+v", byType)
	}

	// the explicit no-helmet box wins over the person box for the second worker
	var second Candidate
	for _, v := range got.Violations {
		if v.Type == "no-helmet" && v.X > 500 {
			second = v
		}
	}
	if second.Confidence != 0.7 {
		t.Fatalf("expected highest confidence negative detection, got %+v", second)
	}
	if math.Abs(second.X-650) > 1e-9 || math.Abs(second.Y-115) > 1e-9 {
		t.Fatalf("unexpected location %v,%v", second.X, second.Y)
	}
	if second.Severity != 3 {
		t.Fatalf("helmet violations are severity 3, got %d", second.Severity)
	}
	if got.Status != "3 Violation(s) Detected" {
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestClassifyDropsMalformedAndLowConfidence(t *testing.T) {
	dets := []detect.Detection{
		det("person", 0, 0, 100, 200, 0.3),
		det("person", 0, 0, 0, 200, 0.9),
		det("", 0, 0, 100, 200, 0.9),
		{Label: "person", Box: detect.BoxFromXYWH(0, 0, 10, 10), Confidence: math.NaN()},
		det("no-helmet", 500, 500, 30, 30, 0.9),
	}

	got := Classify(dets, DefaultPolicy())
	if got.Persons != 0 || len(got.Violations) != 0 {
		t.Fatalf("expected empty analysis, got %+v", got)
	}
	if got.Status != "No persons detected" {
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestClassifyRequiresOverlap(t *testing.T) {
	policy := DefaultPolicy()
	policy.Required = []Category{Helmet}

	dets := []detect.Detection{
		det("person", 100, 100, 100, 300, 0.9),
		// only a sliver of this helmet is inside the person box
		det("helmet", 190, 80, 60, 40, 0.9),
	}

	got := Classify(dets, policy)
	if got.Violating != 1 || len(got.Violations) != 1 || got.Violations[0].Type != "no-helmet" {
		t.Fatalf("expected one no-helmet violation, got %+v", got)
	}
	if got.Violations[0].X != 150 || got.Violations[0].Y != 250 {
		t.Fatalf("without a negative detection the person centroid is used, got %+v", got.Violations[0])
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Hardhat":        "helmet",
		"NO-Hardhat":     "no-helmet",
		"Safety Vest":    "vest",
		"NO-Safety Vest": "no-vest",
		"no_gloves":      "no-gloves",
		"Person":         "person",
		"forklift":       "forklift",
	}
	for in, want := range tests {
		if got := NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}

	if v, ok := ParseViolationType("no-boots"); !ok || v.Describe() != "missing boots" {
		t.Fatalf("unexpected parse result %q %v", v, ok)
	}
	if _, ok := ParseViolationType("helmet"); ok {
		t.Fatalf("positive category must not parse as a violation")
	}
}
