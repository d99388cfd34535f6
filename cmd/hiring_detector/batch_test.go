package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompanyCSV(t *testing.T) {
	csvData := `name,website
Acme,acme.io
Globex,https://globex.com
,missing-name.io
Initech,
`
	companies, err := parseCompanyCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 3)

	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "acme.io", companies[0].Website)
	assert.Equal(t, "https://globex.com", companies[1].Website)
	// Website is optional, the name is not.
	assert.Equal(t, "Initech", companies[2].Name)
	assert.Empty(t, companies[2].Website)
}

func TestParseCompanyCSV_AlternateHeaders(t *testing.T) {
	csvData := `domain,company
acme.io,Acme
`
	companies, err := parseCompanyCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "acme.io", companies[0].Website)
}

func TestParseCompanyCSV_NoNameColumn(t *testing.T) {
	_, err := parseCompanyCSV(strings.NewReader("website\nacme.io\n"))
	assert.Error(t, err)
}
