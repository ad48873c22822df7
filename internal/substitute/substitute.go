// Package substitute renders template text by replacing {{token}} merge
// tokens with supplied values, and validates value maps before an agreement
// is finalized.
package substitute

import (
	"regexp"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Substitute replaces every {{token}} whose value is present and non-empty.
// Unresolved tokens are left intact so they stay visible. Inserted values are
// never rescanned, so the pass is deterministic and, as long as no value
// itself contains a resolvable token, idempotent.
func Substitute(text string, values map[string]string) string {
	if len(values) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-2]
		if v := values[key]; v != "" {
			return v
		}
		return match
	})
}

// Tokens lists the distinct tokens referenced by text in order of first
// appearance.
func Tokens(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Unresolved lists the tokens of text that values does not resolve.
func Unresolved(text string, values map[string]string) []string {
	var out []string
	for _, tok := range Tokens(text) {
		if values[tok] == "" {
			out = append(out, tok)
		}
	}
	return out
}

type Result struct {
	Missing []string `json:"missing"`
}

func (r Result) OK() bool { return len(r.Missing) == 0 }

// RequiredTokens is the set of tokens a template needs before finalizing: its
// mergeFields and, when the template requires all fields, the tokens bound to
// required fields.
func RequiredTokens(tpl *models.Template) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, k := range tpl.MergeFields {
		add(k)
	}
	if tpl.Settings.RequireAllFields {
		for _, f := range tpl.Fields {
			if f.Required {
				add(f.MergeField)
			}
		}
	}
	return out
}

// Validate computes the required tokens that have no non-empty value.
func Validate(tpl *models.Template, values map[string]string) Result {
	var missing []string
	for _, k := range RequiredTokens(tpl) {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	return Result{Missing: missing}
}

// Finalize renders the template terms, refusing with a ValidationError that
// names every missing token by its registry label.
func Finalize(tpl *models.Template, values map[string]string, reg *mergefields.Registry) (string, error) {
	res := Validate(tpl, values)
	if !res.OK() {
		labels := make([]string, len(res.Missing))
		for i, k := range res.Missing {
			labels[i] = reg.Label(k)
		}
		return "", models.NewValidationError("missing required merge values", labels...)
	}
	return Substitute(tpl.Terms, values), nil
}
