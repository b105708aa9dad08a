package rules

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed portals.yaml
var portalsYAML []byte

// Indicator is one weighted classification phrase.
type Indicator struct {
	Phrase string `yaml:"phrase"`
	Weight int    `yaml:"weight"`
}

// PortalTable holds the indicator sets and the minimum score a label needs
// to beat the Generic fallback.
type PortalTable struct {
	Threshold int                    `yaml:"threshold"`
	Portals   map[string][]Indicator `yaml:"portals"`
}

var portalTable = mustLoadPortals()

func mustLoadPortals() PortalTable {
	var t PortalTable
	if err := yaml.Unmarshal(portalsYAML, &t); err != nil {
		panic("rules: invalid portals.yaml: " + err.Error())
	}
	return t
}

// Portals returns the embedded portal indicator table. Read-only,
// process-wide.
func Portals() PortalTable {
	return portalTable
}

// PortalFields dispatches to the portal-specific rule table and overlays
// the result on the generic fields.
func PortalFields(portal, text string) Fields {
	base := ExtractStructuredFields(text)
	var extra Fields
	switch portal {
	case "GeM":
		extra = ExtractGeMFields(text)
	case "CPPP":
		extra = ExtractCPPPFields(text)
	default:
		return base
	}
	for k, v := range extra {
		base[k] = v
	}
	base["portal"] = portal
	return base
}
