package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	assert.True(t, strings.Contains(info, Version))
	assert.True(t, strings.HasSuffix(info, GoVersion))
	assert.Equal(t, Commit, Fields()["commit"])
}
