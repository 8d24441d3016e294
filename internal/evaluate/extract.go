package evaluate

import (
	"regexp"
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// Deterministic alternative extraction from the matched policy clause.
// When the clause itself names the covered counterpart (brand pairs, approved
// strengths, duration limits), that beats asking the oracle: the answer is
// already in the policy text.

var (
	// "Adol → Covered" but never "→ Not covered"
	coveredPairRe = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9 \-]{1,40}?)\s*(?:→|->)\s*Covered\b`)

	// "Covered → Procid 20 mg"; the optional "not" group rejects
	// "Not covered → ..." matches
	coveredPrefixRe = regexp.MustCompile(`(?i)(not\s+)?covered\s*(?:→|->)\s*([A-Za-z][A-Za-z0-9 \-]{1,40}?)(?:[;.,\n]|$)`)

	// "maximum covered duration 10 days", "up to 30 days"
	durationLimitRe = regexp.MustCompile(`(?i)(?:maximum(?: covered)? duration|up to|maximum of)\s+(\d+)\s+days`)

	submittedDaysRe = regexp.MustCompile(`(?i)(?:for\s+)?(\d+)\s*days?`)
)

// extractPolicyAlternatives pulls covered alternatives straight out of the
// clause text. Returns nil when the clause names nothing usable, which sends
// the caller to the oracle instead.
func extractPolicyAlternatives(field model.FieldName, value, clause, diagnosis string) []string {
	if clause == "" {
		return nil
	}

	// Duration exclusions first: the right alternative is the same item
	// within the limit, not whatever covered item the clause happens to name.
	if field == model.FieldPharmacy {
		if alt := durationAlternative(value, clause); alt != "" {
			return []string{alt}
		}
	}

	var alts []string
	seen := make(map[string]bool)
	add := func(alt string) {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return
		}
		key := strings.ToLower(alt)
		// The excluded item itself is never an alternative
		if seen[key] || strings.EqualFold(alt, strings.TrimSpace(value)) {
			return
		}
		seen[key] = true
		alts = append(alts, alt)
	}

	for _, m := range coveredPrefixRe.FindAllStringSubmatch(clause, -1) {
		if m[1] != "" {
			continue
		}
		add(m[2])
	}
	for _, m := range coveredPairRe.FindAllStringSubmatch(clause, -1) {
		add(m[1])
	}

	return alts
}

// durationAlternative rewrites "<item> for N days" as the same item at the
// clause's covered limit. Empty when the clause has no day limit or the
// submitted value carries no day count.
func durationAlternative(value, clause string) string {
	limit := durationLimitRe.FindStringSubmatch(clause)
	if limit == nil {
		return ""
	}
	sub := submittedDaysRe.FindStringSubmatch(value)
	if sub == nil || sub[1] == limit[1] {
		return ""
	}

	item := strings.TrimSpace(submittedDaysRe.ReplaceAllString(value, ""))
	item = strings.TrimSpace(strings.TrimSuffix(item, "for"))
	item = strings.Trim(item, " ,-")
	if item == "" {
		return ""
	}
	return item + " for " + limit[1] + " days"
}
