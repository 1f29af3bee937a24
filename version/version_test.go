package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortTruncatesLongHashes(t *testing.T) {
	i := Info{Commit: "0123456789abcdef"}
	assert.Equal(t, "0123456", i.Short())
}

func TestShortKeepsShortValues(t *testing.T) {
	i := Info{Commit: "dev"}
	assert.Equal(t, "dev", i.Short())
}

func TestStringCarriesBuildIdentity(t *testing.T) {
	i := Info{Version: "v1.4.0", Commit: "0123456789abcdef", BuildTime: "2026-08-01"}
	assert.Equal(t, "segstream v1.4.0 (commit 0123456, built 2026-08-01)", i.String())
}

func TestGetReportsRuntime(t *testing.T) {
	i := Get()
	assert.NotEmpty(t, i.GoVersion)
	assert.Contains(t, i.Platform, "/")
}
