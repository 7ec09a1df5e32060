package ppe

import (
	"strings"
)

// TaxonomyVersion changes whenever a category is added or renamed.
const TaxonomyVersion = "1"

type Category string

const (
	Helmet  Category = "helmet"
	Vest    Category = "vest"
	Gloves  Category = "gloves"
	Goggles Category = "goggles"
	Mask    Category = "mask"
	Boots   Category = "boots"
)

var Categories = []Category{Helmet, Vest, Gloves, Goggles, Mask, Boots}

const PersonLabel = "person"

// ViolationType names a missing piece of equipment, e.g. "no-helmet".
type ViolationType string

const violationPrefix = "no-"

func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

func (c Category) ViolationType() ViolationType {
	return ViolationType(violationPrefix + string(c))
}

func (v ViolationType) Category() Category {
	return Category(strings.TrimPrefix(string(v), violationPrefix))
}

func (v ViolationType) Valid() bool {
	return strings.HasPrefix(string(v), violationPrefix) && v.Category().Valid()
}

// Describe renders the type for humans: "no-helmet" -> "missing helmet".
func (v ViolationType) Describe() string {
	return "missing " + string(v.Category())
}

func ViolationTypes() []ViolationType {
	types := make([]ViolationType, 0, len(Categories))
	for _, c := range Categories {
		types = append(types, c.ViolationType())
	}
	return types
}

func ParseViolationType(s string) (ViolationType, bool) {
	v := ViolationType(NormalizeLabel(s))
	return v, v.Valid()
}

// DefaultSeverity ranks head protection above everything else.
func DefaultSeverity(v ViolationType) int {
	if v.Category() == Helmet {
		return 3
	}
	return 2
}

var labelAliases = map[string]string{
	"hardhat":      string(Helmet),
	"hard-hat":     string(Helmet),
	"safety-vest":  string(Vest),
	"glove":        string(Gloves),
	"goggle":       string(Goggles),
	"glasses":      string(Goggles),
	"safety-boots": string(Boots),
	"boot":         string(Boots),
	"shoes":        string(Boots),
	"face-mask":    string(Mask),
	"people":       PersonLabel,
}

// NormalizeLabel maps detector class names onto the taxonomy. Common dataset
// spellings such as "NO-Hardhat" or "Safety Vest" are folded into
// "no-helmet" and "vest"; unknown labels are returned lower-cased.
func NormalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer(" ", "-", "_", "-").Replace(l)

	negative := strings.HasPrefix(l, violationPrefix)
	base := strings.TrimPrefix(l, violationPrefix)
	if alias, ok := labelAliases[base]; ok {
		base = alias
	}
	if negative {
		return violationPrefix + base
	}
	return base
}
