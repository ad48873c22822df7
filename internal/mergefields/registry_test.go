package mergefields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"customer_name":  "Customer Name",
		"trade_in_value": "Trade In Value",
		"VIN":            "Vin",
		"stockNumber":    "Stock Number",
		"line2_address":  "Line 2 Address",
		"":               "",
		"__x__":          "X",
	}
	for in, want := range cases {
		assert.Equal(t, want, Humanize(in), in)
	}
}

func TestRegistry_ResolveStandard(t *testing.T) {
	r := NewRegistry()

	mf, ok := r.Resolve("company_name")
	require.True(t, ok)
	assert.Equal(t, "Dealership Name", mf.Label)
	assert.Equal(t, CategoryCompany, mf.Category)

	_, ok = r.Resolve("favorite_color")
	assert.False(t, ok)
	assert.Equal(t, "Favorite Color", r.Label("favorite_color"))
	assert.Equal(t, "Total Amount", r.Label("total_amount"))
}

func TestRegistry_AddCustom(t *testing.T) {
	r := NewRegistry()

	mf, err := r.AddCustom("extended_warranty_plan", "", "Plan purchased at signing")
	require.NoError(t, err)
	assert.Equal(t, "Extended Warranty Plan", mf.Label)
	assert.True(t, mf.Custom)
	assert.Equal(t, CategoryAdditional, mf.Category)

	got, ok := r.Resolve("extended_warranty_plan")
	require.True(t, ok)
	assert.Equal(t, mf, got)

	_, err = r.AddCustom("extended_warranty_plan", "Warranty Plan", "")
	require.NoError(t, err)
	assert.Len(t, r.Custom(), 1)
	assert.Equal(t, "Warranty Plan", r.Label("extended_warranty_plan"))

	_, err = r.AddCustom("customer_name", "Buyer", "")
	assert.True(t, models.IsValidationError(err))

	_, err = r.AddCustom("has space", "", "")
	assert.True(t, models.IsValidationError(err))
}

func TestRegistry_CustomIsSessionScoped(t *testing.T) {
	a := NewRegistry()
	_, err := a.AddCustom("rv_slideouts", "Slide-Outs", "")
	require.NoError(t, err)

	b := NewRegistry()
	_, ok := b.Resolve("rv_slideouts")
	assert.False(t, ok)
}

func TestRegistry_Groups(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddCustom("hitch_type", "", "")
	require.NoError(t, err)

	groups := r.Groups()
	require.Len(t, groups, len(Categories()))
	assert.Equal(t, CategoryCustomer, groups[0].Category)

	additional := r.ByCategory(CategoryAdditional)
	require.NotEmpty(t, additional)
	assert.Equal(t, "hitch_type", additional[len(additional)-1].Key)

	seen := map[string]bool{}
	for _, k := range r.Keys() {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		assert.True(t, ValidKey(k), k)
	}
}
