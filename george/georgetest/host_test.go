package georgetest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johhnry/gotvpaint/george/georgetest"
)

func TestNewHostWithProjectIDs(t *testing.T) {
	host, projectID := georgetest.NewHostWithProject("/tmp/ids.tvpp")
	assert.Equal(t, "P0001", projectID)

	steps := []struct{ line, want string }{
		{"tv_LayerCurrentID", "101"},
		{"tv_ClipCurrentId", "102"},
		{"tv_SceneCurrentId", "103"},
		{"tv_LayerCreate ink", "104"},
	}
	for _, step := range steps {
		reply, err := host.Execute(context.Background(), step.line)
		require.NoError(t, err, step.line)
		assert.Equal(t, step.want, reply, step.line)
	}
}
