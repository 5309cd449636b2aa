package trademark

import "strings"

// RegionGlobal is the region selector that searches every country.
const RegionGlobal = "global"

// Labels maps a country code to its display name.
type Labels map[string]string

// DefaultLabels returns the Latin-American jurisdictions the product covers.
func DefaultLabels() Labels {
	return Labels{
		RegionGlobal: "Global Latin America",
		"AR":         "Argentina",
		"BO":         "Bolivia",
		"BR":         "Brazil",
		"CL":         "Chile",
		"CO":         "Colombia",
		"CR":         "Costa Rica",
		"CU":         "Cuba",
		"DO":         "Dominican Republic",
		"EC":         "Ecuador",
		"SV":         "El Salvador",
		"GT":         "Guatemala",
		"HN":         "Honduras",
		"MX":         "Mexico",
		"NI":         "Nicaragua",
		"PA":         "Panama",
		"PY":         "Paraguay",
		"PE":         "Peru",
		"UY":         "Uruguay",
		"VE":         "Venezuela",
	}
}

// Label returns the display name for code, or code itself when none is registered.
func (l Labels) Label(code string) string {
	if isGlobal(code) {
		if v, ok := l[RegionGlobal]; ok {
			return v
		}
		return code
	}
	if v, ok := l[canonicalCode(code)]; ok && v != "" {
		return v
	}
	return code
}

// Merge returns a new table with other's entries layered over l.
func (l Labels) Merge(other map[string]string) Labels {
	out := make(Labels, len(l)+len(other))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range other {
		if v == "" {
			continue
		}
		if isGlobal(k) {
			out[RegionGlobal] = v
			continue
		}
		out[canonicalCode(k)] = v
	}
	return out
}

func isGlobal(region string) bool {
	region = strings.TrimSpace(region)
	return region == "" || strings.EqualFold(region, RegionGlobal)
}
