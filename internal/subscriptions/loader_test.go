package subscriptions

import (
	"cvewatch/internal/models"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeJobs = `
starttime: 9
interval: 24
updates: true
send_to:
  - sec@example.com
  - ops@example.com
jobs:
  - vendor: acme
    products:
      - widget pro
      - gadget
  - vendor: globex
    products: [portal]
    additional_parameters:
      keywordSearch: portal
      noRejected:
      resultsPerPage: 50
`

func writeJobFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadFile_OneDefinitionPerEntryAndRecipient(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "acme.yaml", acmeJobs)

	defs, errs := LoadFile(filepath.Join(dir, "acme.yaml"))
	require.Empty(t, errs)
	require.Len(t, defs, 4)

	assert.Equal(t, Definition{
		StartOffset:   9,
		IntervalHours: 24,
		FetchUpdates:  true,
		Recipient:     "sec@example.com",
		Vendor:        "acme",
		Products:      []string{"widget pro", "gadget"},
		SourceFile:    "acme.yaml",
		ExtraParams:   map[string]string{},
	}, defs[0])
	assert.Equal(t, "ops@example.com", defs[1].Recipient)
	assert.Equal(t, map[string]string{
		"keywordSearch":  "portal",
		"noRejected":     "",
		"resultsPerPage": "50",
	}, defs[2].ExtraParams)
}

func TestLoadFile_InvalidFiles(t *testing.T) {
	tests := map[string]string{
		"not yaml":        "interval: [24\n",
		"zero interval":   "interval: 0\nsend_to: [a@example.com]\njobs: [{vendor: acme, products: [x]}]\n",
		"offset too high": "starttime: 25\ninterval: 1\nsend_to: [a@example.com]\njobs: [{vendor: acme, products: [x]}]\n",
		"no recipients":   "interval: 1\njobs: [{vendor: acme, products: [x]}]\n",
		"bad recipient":   "interval: 1\nsend_to: [nobody]\njobs: [{vendor: acme, products: [x]}]\n",
		"no jobs":         "interval: 1\nsend_to: [a@example.com]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeJobFile(t, dir, "broken.yaml", body)

			defs, errs := LoadFile(filepath.Join(dir, "broken.yaml"))
			assert.Empty(t, defs)
			require.Len(t, errs, 1)
			var loadErr *models.ConfigLoadError
			require.True(t, errors.As(errs[0], &loadErr))
			assert.Equal(t, "broken.yaml", loadErr.Source)
		})
	}
}

func TestLoadFile_BrokenEntryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "mixed.yaml", `
interval: 12
send_to: [a@example.com]
jobs:
  - vendor: acme
    products: [widget]
  - products: [orphan]
`)

	defs, errs := LoadFile(filepath.Join(dir, "mixed.yaml"))
	require.Len(t, defs, 1)
	assert.Equal(t, "acme", defs[0].Vendor)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "jobs[1]")
}

func TestLoadDir_SkipsBrokenFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "acme.yaml", acmeJobs)
	writeJobFile(t, dir, "broken.yaml", "interval: [\n")
	writeJobFile(t, dir, "notes.txt", "not a job file")

	defs, errs := LoadDir(dir, "*.yaml")
	assert.Len(t, defs, 4)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken.yaml")
}

func TestLoadDir_MissingDir(t *testing.T) {
	defs, errs := LoadDir(filepath.Join(t.TempDir(), "absent"), "")
	assert.Empty(t, defs)
	require.Len(t, errs, 1)
	var loadErr *models.ConfigLoadError
	assert.True(t, errors.As(errs[0], &loadErr))
}

func TestLoadFile_ParameterValues(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "params.yaml", `
interval: 12
send_to: [a@example.com]
jobs:
  - vendor: acme
    products: [widget]
    additional_parameters:
      isVulnerable: true
      cvssV3Metrics: 7.5
  - vendor: globex
    products: [portal]
    additional_parameters:
      keywordSearch: [portal, gateway]
`)

	defs, errs := LoadFile(filepath.Join(dir, "params.yaml"))
	require.Len(t, defs, 1)
	assert.Equal(t, map[string]string{"isVulnerable": "true", "cvssV3Metrics": "7.5"}, defs[0].ExtraParams)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "jobs[1]")
	assert.Contains(t, errs[0].Error(), "additional_parameters.keywordSearch")
}
