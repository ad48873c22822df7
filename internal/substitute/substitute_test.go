package substitute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

func TestSubstitute(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		values map[string]string
		want   string
	}{
		{"unresolved left intact", "Hello {{x}}", map[string]string{}, "Hello {{x}}"},
		{"nil map", "Hello {{x}}", nil, "Hello {{x}}"},
		{"every occurrence", "{{a}} and {{a}}", map[string]string{"a": "Z"}, "Z and Z"},
		{"empty value is unresolved", "Buyer: {{customer_name}}", map[string]string{"customer_name": ""}, "Buyer: {{customer_name}}"},
		{"case sensitive", "{{Name}} {{name}}", map[string]string{"name": "jo"}, "{{Name}} jo"},
		{"not an identifier", "{{ name }} {{na-me}}", map[string]string{"name": "x", "na-me": "y"}, "{{ name }} {{na-me}}"},
		{"adjacent tokens", "{{a}}{{b}}{{a}}", map[string]string{"a": "1", "b": "2"}, "121"},
		{"triple braces", "{{{a}}}", map[string]string{"a": "v"}, "{v}"},
		{
			"end to end",
			"Dealer: {{company_name}}, Buyer: {{customer_name}}",
			map[string]string{"company_name": "Acme RV", "customer_name": "John Doe"},
			"Dealer: Acme RV, Buyer: John Doe",
		},
		{"value not rescanned", "{{a}}", map[string]string{"a": "{{b}}"}, "{{b}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Substitute(tc.text, tc.values))
		})
	}
}

// Values are inserted verbatim and never rescanned, so a value that itself
// holds a resolvable token only resolves on a second pass.
func TestSubstitute_ValueContainingToken(t *testing.T) {
	values := map[string]string{"a": "{{b}}", "b": "X"}

	once := Substitute("{{a}}", values)
	assert.Equal(t, "{{b}}", once)
	assert.Equal(t, "X", Substitute(once, values))
}

func TestSubstitute_Idempotent(t *testing.T) {
	texts := []string{
		"",
		"no tokens here",
		"{{a}} {{b}} {{c}} {{a}}",
		"Sold to {{customer_name}} on {{agreement_date}} for {{sale_price}}. {{notes}}",
		"{{{{a}}}}",
	}
	maps := []map[string]string{
		nil,
		{"a": "1"},
		{"a": "A", "b": "", "c": "$5"},
		{"customer_name": "Jane Roe", "sale_price": "$48,000", "notes": "{ not a token }"},
	}
	for _, text := range texts {
		for _, m := range maps {
			once := Substitute(text, m)
			assert.Equal(t, once, Substitute(once, m), "text=%q map=%v", text, m)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("{{b}} {{a}} {{b}} {{ c }} {{d_1}}")
	assert.Equal(t, []string{"b", "a", "d_1"}, got)
	assert.Nil(t, Tokens("plain"))
	assert.Equal(t, []string{"a"}, Unresolved("{{a}} {{b}}", map[string]string{"b": "x"}))
}

func TestValidate(t *testing.T) {
	tpl := &models.Template{MergeFields: []string{"customer_name", "total_amount"}}

	res := Validate(tpl, map[string]string{"customer_name": "Jane"})
	assert.Equal(t, []string{"total_amount"}, res.Missing)
	assert.False(t, res.OK())

	res = Validate(tpl, map[string]string{"customer_name": "Jane", "total_amount": "$1"})
	assert.True(t, res.OK())

	res = Validate(tpl, map[string]string{"customer_name": "", "total_amount": "$1"})
	assert.Equal(t, []string{"customer_name"}, res.Missing)
}

func TestValidate_RequiredFieldTokens(t *testing.T) {
	tpl := &models.Template{
		MergeFields: []string{"customer_name"},
		Fields: []models.Field{
			{ID: "f1", Required: true, MergeField: "vehicle_vin"},
			{ID: "f2", Required: false, MergeField: "notes"},
			{ID: "f3", Required: true, MergeField: "customer_name"},
		},
		Settings: models.Settings{RequireAllFields: true},
	}
	assert.Equal(t, []string{"customer_name", "vehicle_vin"}, Validate(tpl, nil).Missing)

	tpl.Settings.RequireAllFields = false
	assert.Equal(t, []string{"customer_name"}, Validate(tpl, nil).Missing)
}

func TestFinalize(t *testing.T) {
	reg := mergefields.NewRegistry()
	tpl := &models.Template{
		MergeFields: []string{"customer_name", "total_amount", "hitch_rating"},
		Terms:       "Buyer {{customer_name}} owes {{total_amount}}.",
	}

	_, err := Finalize(tpl, map[string]string{"customer_name": "Jane"}, reg)
	require.Error(t, err)
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"Total Amount", "Hitch Rating"}, ve.Missing)

	text, err := Finalize(tpl, map[string]string{
		"customer_name": "Jane",
		"total_amount":  "$12,400",
		"hitch_rating":  "Class III",
	}, reg)
	require.NoError(t, err)
	assert.Equal(t, "Buyer Jane owes $12,400.", text)
}
