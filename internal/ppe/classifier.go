// Package ppe turns raw detections into per-person compliance verdicts.
package ppe

import (
	"fmt"
	"sort"

	"injuryshield/internal/detect"
)

type Policy struct {
	// Required categories for the monitored zone.
	Required      []Category
	MinConfidence float64
	// MinOverlap is the fraction of a PPE box that must lie inside the
	// person box for the item to count as worn by that person.
	MinOverlap float64
	Severity   map[Category]int
}

func DefaultPolicy() Policy {
	return Policy{
		Required:      []Category{Helmet, Vest},
		MinConfidence: 0.5,
		MinOverlap:    0.5,
	}
}

func (p Policy) SeverityOf(v ViolationType) int {
	if s, ok := p.Severity[v.Category()]; ok {
		return s
	}
	return DefaultSeverity(v)
}

type Candidate struct {
	Type       ViolationType `json:"type"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Box        detect.Box    `json:"box"`
	Confidence float64       `json:"confidence"`
	Severity   int           `json:"severity"`
	Details    string        `json:"details,omitempty"`
}

type PersonResult struct {
	Box        detect.Box `json:"box"`
	Confidence float64    `json:"confidence"`
	Worn       []Category `json:"worn"`
	Missing    []Category `json:"missing"`
}

func (p PersonResult) Compliant() bool {
	return len(p.Missing) == 0
}

type FrameAnalysis struct {
	Persons    int            `json:"persons"`
	Compliant  int            `json:"compliant"`
	Violating  int            `json:"violating"`
	PPEWorn    int            `json:"ppeWorn"`
	People     []PersonResult `json:"people"`
	Violations []Candidate    `json:"violations"`
	Status     string         `json:"status"`
}

// Types returns the distinct violation types in the frame, sorted.
func (f FrameAnalysis) Types() []ViolationType {
	seen := map[ViolationType]bool{}
	var out []ViolationType
	for _, v := range f.Violations {
		if !seen[v.Type] {
			seen[v.Type] = true
			out = append(out, v.Type)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func StatusText(persons, violations int) string {
	switch {
	case persons == 0:
		return "No persons detected"
	case violations == 0:
		return "Compliant"
	default:
		return fmt.Sprintf("%d Violation(s) Detected", violations)
	}
}

type labeled struct {
	category Category
	negative bool
	det      detect.Detection
}

func Classify(dets []detect.Detection, policy Policy) FrameAnalysis {
	var persons []detect.Detection
	var items []labeled

	for _, d := range detect.Valid(dets) {
		if d.Confidence < policy.MinConfidence {
			continue
		}
		label := NormalizeLabel(d.Label)
		if label == PersonLabel {
			persons = append(persons, d)
			continue
		}
		if v := ViolationType(label); v.Valid() {
			items = append(items, labeled{category: v.Category(), negative: true, det: d})
			continue
		}
		if c := Category(label); c.Valid() {
			items = append(items, labeled{category: c, det: d})
		}
	}

	res := FrameAnalysis{
		Persons:    len(persons),
		People:     make([]PersonResult, 0, len(persons)),
		Violations: []Candidate{},
	}

	for _, p := range persons {
		worn := map[Category]detect.Detection{}
		offending := map[Category]detect.Detection{}

		for _, it := range items {
			if it.det.Box.ContainedIn(p.Box) < policy.MinOverlap {
				continue
			}
			target := worn
			if it.negative {
				target = offending
			}
			if prev, ok := target[it.category]; !ok || it.det.Confidence > prev.Confidence {
				target[it.category] = it.det
			}
		}

		pr := PersonResult{Box: p.Box, Confidence: p.Confidence}
		for _, c := range Categories {
			if _, ok := worn[c]; ok {
				pr.Worn = append(pr.Worn, c)
			}
		}
		res.PPEWorn += len(pr.Worn)

		for _, c := range policy.Required {
			if _, ok := worn[c]; ok {
				continue
			}
			pr.Missing = append(pr.Missing, c)

			region, conf := p.Box, p.Confidence
			details := "required equipment not detected on person"
			if neg, ok := offending[c]; ok {
				region, conf = neg.Box, neg.Confidence
				details = "detector reported " + string(c.ViolationType())
			}
			x, y := region.Centroid()
			vt := c.ViolationType()
			res.Violations = append(res.Violations, Candidate{
				Type:       vt,
				X:          x,
				Y:          y,
				Box:        region,
				Confidence: conf,
				Severity:   policy.SeverityOf(vt),
				Details:    details,
			})
		}

		if pr.Compliant() {
			res.Compliant++
		} else {
			res.Violating++
		}
		res.People = append(res.People, pr)
	}

	res.Status = StatusText(res.Persons, len(res.Violations))
	return res
}
