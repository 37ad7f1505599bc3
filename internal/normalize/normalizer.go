package normalize

import (
	"regexp"
	"strings"
)

// rule maps a substring to its canonical form. Rules are evaluated in order
// and the first match wins, so more specific substrings must come first.
type rule struct {
	Contains  string
	Canonical string
}

// Normalizer canonicalizes free-text facility and customer names from the
// billing feed. All methods are pure and deterministic, so results may be
// cached by input string.
type Normalizer struct {
	whitespace *regexp.Regexp

	entitySuffixes  []string
	genericSuffixes []string

	canonicalRules []rule
	businessRules  []rule
	locationRules  []rule
}

// NewNormalizer builds a normalizer with the curated rule tables
func NewNormalizer() *Normalizer {
	return &Normalizer{
		whitespace: regexp.MustCompile(`\s+`),

		// Legal entity suffixes stripped from the tail of a name
		entitySuffixes: []string{
			" PTY LTD", " PTY. LTD.", " PTY LIMITED", " LIMITED", " LTD",
			" CORPORATION", " CORP", " INCORPORATED", " INC",
			" HOLDINGS", " GROUP", " CO",
		},

		// Generic trailing words that carry no matching signal
		genericSuffixes: []string{
			" GARAGE", " ROADHOUSE", " SERVICE STATION", " FUEL SUPPLIES",
		},

		// Known naming variants of the same facility fold to one canonical
		// label. Order matters: multi-word variants before their substrings.
		canonicalRules: []rule{
			{"KEWDALE", "KEWDALE TERMINAL"},
			{"WELSHPOOL", "KEWDALE TERMINAL"},
			{"PORT HEDLAND", "PORT HEDLAND TERMINAL"},
			{"PT HEDLAND", "PORT HEDLAND TERMINAL"},
			{"HEDLAND", "PORT HEDLAND TERMINAL"},
			{"COOGEE ROCKINGHAM", "COOGEE ROCKINGHAM TERMINAL"},
			{"ROCKINGHAM", "COOGEE ROCKINGHAM TERMINAL"},
			{"KALGOORLIE", "KALGOORLIE DEPOT"},
			{"KARRATHA", "KARRATHA DEPOT"},
			{"GERALDTON", "GERALDTON DEPOT"},
			{"ESPERANCE", "ESPERANCE DEPOT"},
			{"BUNBURY", "BUNBURY TERMINAL"},
			{"PICTON", "BUNBURY TERMINAL"},
			{"ALBANY", "ALBANY DEPOT"},
			{"MERREDIN", "MERREDIN DEPOT"},
			{"WONGAN HILLS", "WONGAN HILLS DEPOT"},
			{"NEWMAN", "NEWMAN DEPOT"},
		},

		// Closed vocabulary of known large accounts
		businessRules: []rule{
			{"RIO TINTO", "RIO TINTO"},
			{"HAMERSLEY", "RIO TINTO"},
			{"BHP", "BHP"},
			{"BROKEN HILL PROPRIETARY", "BHP"},
			{"FORTESCUE", "FMG"},
			{"FMG", "FMG"},
			{"SOUTH32", "SOUTH32"},
			{"KCGM", "KCGM"},
			{"SUPER PIT", "KCGM"},
			{"BGC", "BGC"},
			{"CSBP", "CSBP"},
			{"WESFARMERS", "WESFARMERS"},
			{"AWR", "AWR"},
		},

		// City/region keywords used as a geographic reference
		locationRules: []rule{
			{"PORT HEDLAND", "PORT HEDLAND"},
			{"PT HEDLAND", "PORT HEDLAND"},
			{"HEDLAND", "PORT HEDLAND"},
			{"WONGAN HILLS", "WONGAN HILLS"},
			{"KEWDALE", "KEWDALE"},
			{"WELSHPOOL", "KEWDALE"},
			{"PERTH", "PERTH"},
			{"KALGOORLIE", "KALGOORLIE"},
			{"KARRATHA", "KARRATHA"},
			{"NEWMAN", "NEWMAN"},
			{"GERALDTON", "GERALDTON"},
			{"ESPERANCE", "ESPERANCE"},
			{"BUNBURY", "BUNBURY"},
			{"ALBANY", "ALBANY"},
			{"FREMANTLE", "FREMANTLE"},
			{"MERREDIN", "MERREDIN"},
		},
	}
}

// Normalize canonicalizes a raw location or customer string: uppercase, trim,
// collapse whitespace, strip entity and generic suffixes, then fold known
// facility variants into their canonical label.
func (n *Normalizer) Normalize(raw string) string {
	s := n.clean(raw)
	if s == "" {
		return ""
	}

	for _, r := range n.canonicalRules {
		if strings.Contains(s, r.Contains) {
			return r.Canonical
		}
	}

	return s
}

// BusinessIdentifier extracts a known large-account identifier from the raw
// string. Returns "" when no rule matches.
func (n *Normalizer) BusinessIdentifier(raw string) string {
	s := n.clean(raw)
	if s == "" {
		return ""
	}

	for _, r := range n.businessRules {
		if strings.Contains(s, r.Contains) {
			return r.Canonical
		}
	}

	return ""
}

// LocationReference extracts a city/region keyword from the raw string.
// Returns "" when no rule matches.
func (n *Normalizer) LocationReference(raw string) string {
	s := n.clean(raw)
	if s == "" {
		return ""
	}

	for _, r := range n.locationRules {
		if strings.Contains(s, r.Contains) {
			return r.Canonical
		}
	}

	return ""
}

// clean uppercases, collapses whitespace, and strips trailing suffixes
func (n *Normalizer) clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = n.whitespace.ReplaceAllString(s, " ")

	// Suffixes can stack ("X FUEL SUPPLIES PTY LTD"), so strip repeatedly
	for {
		stripped := false
		for _, suffix := range n.entitySuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				stripped = true
			}
		}
		for _, suffix := range n.genericSuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}

	return s
}
