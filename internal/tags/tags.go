// Package tags normalizes free-text tag lists against the platform's
// approved vocabulary.
package tags

import (
	"strings"
)

// Approver maps a free-text tag to its approved canonical form.
// The second return is false when the tag has no match in the vocabulary.
type Approver interface {
	Approve(tag string) (string, bool)
}

// canonical lowercases a tag and strips all spaces, the form used for
// exclusion matching.
func canonical(tag string) string {
	return strings.ReplaceAll(strings.ToLower(tag), " ", "")
}

// Normalize cleans a raw tag list: trims whitespace, drops tags whose
// canonical form is in exclude, deduplicates preserving first-seen order,
// and maps the survivors through the approver. Tags the approver does not
// recognize are dropped and counted in rejected. If mandatory is non-empty
// and absent from the result it is appended.
//
// Normalize is idempotent: running it over its own output drops nothing
// further and does not duplicate the mandatory tag.
func Normalize(raw []string, exclude map[string]bool, approver Approver, mandatory string) (accepted []string, rejected int) {
	seen := make(map[string]bool, len(raw))
	seenApproved := make(map[string]bool, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if exclude[canonical(tag)] {
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true

		approved, ok := approver.Approve(tag)
		if !ok {
			rejected++
			continue
		}
		if seenApproved[approved] {
			continue
		}
		seenApproved[approved] = true
		accepted = append(accepted, approved)
	}

	if mandatory != "" {
		present := false
		for _, tag := range accepted {
			if tag == mandatory {
				present = true
				break
			}
		}
		if !present {
			accepted = append(accepted, mandatory)
		}
	}

	return accepted, rejected
}

// themeRule names the tags a theme forces in or out.
type themeRule struct {
	ensure []string
	remove []string
}

// themePolicy is a fixed rule table keyed by theme token. Boundary datasets
// must carry the administrative-divisions tag and never the population one;
// population datasets the inverse.
var themePolicy = map[string]themeRule{
	"COD_AB": {
		ensure: []string{"administrative divisions"},
		remove: []string{"baseline population"},
	},
	"COD_PS": {
		ensure: []string{"baseline population"},
		remove: []string{"administrative divisions"},
	},
}

// ApplyThemePolicy enforces the per-theme tag rules on an already
// normalized tag list. Themes without a rule pass through unchanged.
func ApplyThemePolicy(tags []string, theme string) []string {
	rule, ok := themePolicy[theme]
	if !ok {
		return tags
	}

	result := tags[:0:0]
	for _, tag := range tags {
		drop := false
		for _, r := range rule.remove {
			if tag == r {
				drop = true
				break
			}
		}
		if !drop {
			result = append(result, tag)
		}
	}

	for _, e := range rule.ensure {
		present := false
		for _, tag := range result {
			if tag == e {
				present = true
				break
			}
		}
		if !present {
			result = append(result, e)
		}
	}

	return result
}
