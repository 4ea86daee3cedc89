package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	var b bytes.Buffer
	PrintBuildData(&b)

	assert.Equal(t, "Build version: v1.2.3\nBuild date: N/A\nBuild commit: N/A\n", b.String())
}
