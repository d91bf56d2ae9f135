package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"agent-falcon/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationDetails(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ae *apperror.Error
	require.True(t, errors.As(err, &ae), "expected *apperror.Error, got %T", err)
	require.True(t, ae.IsValidation())
	assert.Equal(t, 400, ae.Status)
	return ae.Details
}

func TestValidateAcceptsMinimalRequest(t *testing.T) {
	req, err := NewSchemaValidator().Validate([]byte(`{"input":"How am I doing?"}`))
	require.NoError(t, err)

	assert.Equal(t, "How am I doing?", req.Input)
	assert.Nil(t, req.Transactions)
	assert.Nil(t, req.Metadata)
}

func TestValidateFullRequest(t *testing.T) {
	body := `{
		"input": "Summarize",
		"transactions": [
			{"date": "2024-01-01", "amount": 12.5, "vendor": "Cafe", "category": "food", "note": "", "extra": true},
			{"amount": 0}
		],
		"metadata": {"currency": "USD"},
		"unknown": 1
	}`

	req, err := NewSchemaValidator().Validate([]byte(body))
	require.NoError(t, err)

	require.Len(t, req.Transactions, 2)
	assert.Equal(t, 12.5, *req.Transactions[0].Amount)
	assert.Equal(t, "Cafe", *req.Transactions[0].Vendor)
	assert.Equal(t, "", *req.Transactions[0].Note)
	assert.Equal(t, 0.0, *req.Transactions[1].Amount)
	assert.Nil(t, req.Transactions[1].Vendor)
	assert.Equal(t, map[string]any{"currency": "USD"}, req.Metadata)
}

func TestValidateMissingInput(t *testing.T) {
	v := NewSchemaValidator()

	for _, body := range []string{``, `{}`, `   `, `{"input":""}`} {
		_, err := v.Validate([]byte(body))
		details := validationDetails(t, err)
		assert.Equal(t, []string{msgInputRequired}, details["input"], "body %q", body)
	}
}

func TestValidateMalformedAndNonObject(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate([]byte(`{"input":`))
	details := validationDetails(t, err)
	require.Len(t, details["body"], 1)
	assert.True(t, strings.HasPrefix(details["body"][0], "malformed JSON: "))

	for _, body := range []string{`[]`, `"text"`, `42`, `null`} {
		_, err := v.Validate([]byte(body))
		assert.Equal(t, map[string][]string{"body": {"expected object"}}, validationDetails(t, err), "body %s", body)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	body := `{
		"input": 5,
		"transactions": [
			{"amount": "ten", "vendor": ""},
			{"vendor": "Shop", "category": ""},
			"nope",
			{"amount": 1, "date": 20240101}
		],
		"metadata": []
	}`

	_, err := NewSchemaValidator().Validate([]byte(body))
	details := validationDetails(t, err)

	assert.Equal(t, map[string][]string{
		"input":                    {"must be a string"},
		"transactions[0].amount":   {"must be a number"},
		"transactions[0].vendor":   {"must not be empty"},
		"transactions[1].amount":   {"is required"},
		"transactions[1].category": {"must not be empty"},
		"transactions[2]":          {"must be an object"},
		"transactions[3].date":     {"must be a string"},
		"metadata":                 {"must be an object"},
	}, details)
}

func TestValidateTransactionLimit(t *testing.T) {
	build := func(n int) []byte {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf(`{"amount": %d}`, i)
		}
		return []byte(`{"input":"x","transactions":[` + strings.Join(items, ",") + `]}`)
	}

	v := NewSchemaValidator()

	req, err := v.Validate(build(500))
	require.NoError(t, err)
	assert.Len(t, req.Transactions, 500)

	_, err = v.Validate(build(501))
	details := validationDetails(t, err)
	assert.Equal(t, []string{"must contain at most 500 items"}, details["transactions"])
}

func TestValidateWrongContainerTypes(t *testing.T) {
	_, err := NewSchemaValidator().Validate([]byte(`{"input":"x","transactions":{},"metadata":"m"}`))
	details := validationDetails(t, err)

	assert.Equal(t, []string{"must be an array"}, details["transactions"])
	assert.Equal(t, []string{"must be an object"}, details["metadata"])
	assert.NotContains(t, details, "input")
}
