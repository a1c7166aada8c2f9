package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	for _, valid := range []string{"infra", "app", "all"} {
		stage, err := ParseStage(valid)
		require.NoError(t, err)
		assert.Equal(t, Stage(valid), stage)
	}

	_, err := ParseStage("deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stage")
}
