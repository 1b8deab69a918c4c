package crud

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

func TestBinderDecodesCustomTypesAndBlanks(t *testing.T) {
	b := NewBinder()
	var v vendor
	errs := b.Decode(&v, url.Values{
		"name":         {"Medline India"},
		"email":        {""},
		"active":       {"true"},
		"credit_limit": {" 250000.50 "},
		"since":        {""},
		"csrf_token":   {"ignored"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "Medline India", v.Name)
	assert.True(t, v.Active)
	assert.True(t, decimal.RequireFromString("250000.5").Equal(v.CreditLimit))
	assert.Nil(t, v.Since, "blank optional date stays nil")

	var dated vendor
	require.Empty(t, b.Decode(&dated, url.Values{"name": {"X"}, "since": {"2025-11-03"}}))
	require.NotNil(t, dated.Since)
	assert.Equal(t, shared.NewDate(2025, time.November, 3), *dated.Since)
}

func TestBinderReportsConversionErrors(t *testing.T) {
	b := NewBinder()
	var v vendor
	errs := b.Decode(&v, url.Values{"name": {"X"}, "credit_limit": {"lots"}, "since": {"03/11/2025"}})
	assert.Contains(t, errs, "credit_limit")
	assert.Contains(t, errs, "since")
}

func TestBinderValidateUsesFormNames(t *testing.T) {
	b := NewBinder()
	errs := b.Validate(vendor{Email: "not-an-email", CreditLimit: decimal.NewFromInt(-1)})
	assert.Equal(t, "This field is required.", errs["name"])
	assert.Equal(t, "Enter a valid email address.", errs["email"])
	assert.Equal(t, "Must be 0 or more.", errs["credit_limit"])

	assert.Empty(t, b.Validate(vendor{Name: "Ok", CreditLimit: decimal.Zero}))
}

func TestBinderEncode(t *testing.T) {
	b := NewBinder()
	since := shared.NewDate(2024, time.February, 29)
	values, err := b.Encode(vendor{ID: 9, Name: "Acme", Active: true, CreditLimit: decimal.RequireFromString("12.50"), Since: &since})
	require.NoError(t, err)
	assert.Equal(t, "Acme", values.Get("name"))
	assert.Equal(t, "true", values.Get("active"))
	assert.Equal(t, "12.5", values.Get("credit_limit"))
	assert.Equal(t, "2024-02-29", values.Get("since"))
	assert.Empty(t, values.Get("city_id"))
	_, hasID := values["ID"]
	assert.False(t, hasID)
}
