package detect

import (
	"fmt"
	"os"
	"strings"
)

// DecodeRows turns a flat [N,6] tensor of x1,y1,x2,y2,confidence,class_id
// rows into detections. Rows with an unknown class or below minConfidence
// are skipped; a trailing partial row is ignored.
func DecodeRows(raw []float32, labels []string, minConfidence float64) []Detection {
	var out []Detection
	for i := 0; i+5 < len(raw); i += 6 {
		conf := float64(raw[i+4])
		if conf < minConfidence {
			continue
		}
		classID := int(raw[i+5])
		if classID < 0 || classID >= len(labels) || labels[classID] == "" {
			continue
		}
		out = append(out, Detection{
			Label: labels[classID],
			Box: Box{
				X1: float64(raw[i]),
				Y1: float64(raw[i+1]),
				X2: float64(raw[i+2]),
				Y2: float64(raw[i+3]),
			},
			Confidence: conf,
		})
	}
	return out
}

// LoadLabels reads class names, one per line, from file when set, otherwise
// splits the comma separated inline list.
func LoadLabels(inline, file string) ([]string, error) {
	var parts []string
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read labels file: %w", err)
		}
		parts = strings.Split(string(data), "\n")
		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}
	} else {
		parts = strings.Split(inline, ",")
	}

	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		labels = append(labels, strings.TrimSpace(p))
	}
	if len(labels) == 0 || (len(labels) == 1 && labels[0] == "") {
		return nil, fmt.Errorf("no labels configured")
	}
	return labels, nil
}
