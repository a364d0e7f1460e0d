package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

func TestValidateArgs_RejectsBothURLAndURLs(t *testing.T) {
	_, _, _, err := validateArgs("https://a.com", "https://b.com", "desktop", "json", "", false, 3, 50, 3)
	assert.Error(t, err)
}

func TestValidateArgs_RejectsNeitherURLNorURLs(t *testing.T) {
	_, _, _, err := validateArgs("", "", "desktop", "json", "", false, 3, 50, 3)
	assert.Error(t, err)
}

func TestValidateArgs_CrawlRejectsMultipleURLs(t *testing.T) {
	_, _, _, err := validateArgs("", "https://a.com https://b.com", "desktop", "json", "", true, 3, 50, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Crawling mode only supports a single starting URL")
}

func TestValidateArgs_ResolvesMobileViewport(t *testing.T) {
	urls, _, viewport, err := validateArgs("https://example.com", "", "mobile", "json", "", false, 3, 50, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, urls)
	assert.Equal(t, auditmodel.Viewport{Width: 375, Height: 667}, viewport)
}

func TestValidateArgs_ParsesCustomViewport(t *testing.T) {
	_, _, viewport, err := validateArgs("https://example.com", "", "800x600", "json", "", false, 3, 50, 3)
	require.NoError(t, err)
	assert.Equal(t, auditmodel.Viewport{Width: 800, Height: 600}, viewport)
}

func TestValidateArgs_RejectsNonJSONFormat(t *testing.T) {
	_, _, _, err := validateArgs("https://example.com", "", "desktop", "xml", "", false, 3, 50, 3)
	assert.Error(t, err)
}

func TestValidateArgs_RejectsOutOfRangeMaxDepth(t *testing.T) {
	_, _, _, err := validateArgs("https://example.com", "", "desktop", "json", "", false, 0, 50, 3)
	assert.Error(t, err)
}

func TestParseDetectors_TrimsAndDropsEmptyTokens(t *testing.T) {
	// spec §8 scenario 3.
	names, err := parseDetectors("overlap, , spacing, ,")
	require.NoError(t, err)
	assert.Equal(t, []string{"overlap", "spacing"}, names)
}

func TestParseDetectors_RejectsUnknownName(t *testing.T) {
	_, err := parseDetectors("overlap, bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestParseDetectors_EmptyStringYieldsNil(t *testing.T) {
	names, err := parseDetectors("")
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestParseViewport_RejectsUnrecognized(t *testing.T) {
	_, err := parseViewport("not-a-viewport")
	assert.Error(t, err)
}

func TestWriteOutput_WritesUnwrappedSingleResultToFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.json"

	result := auditmodel.NewMultiURLAuditResult([]auditmodel.AuditResult{
		auditmodel.NewAuditResult("https://example.com", auditmodel.Viewport{Width: 1920, Height: 1080}, nil),
	}, false)

	require.NoError(t, writeOutput(result, true, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "https://example.com"`)
	assert.NotContains(t, string(data), `"results"`)
}
