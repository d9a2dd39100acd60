package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-platform/orchestrator/internal/model"
)

func TestAgentRegistry_RegisterAndGet(t *testing.T) {
	r := NewAgentRegistry()

	spec := &model.AgentSpec{ID: "researcher", Name: "Researcher"}
	require.NoError(t, r.Register(spec))

	got, err := r.Get("researcher")
	require.NoError(t, err)
	assert.Equal(t, "Researcher", got.Name)
}

func TestAgentRegistry_GetUnknown(t *testing.T) {
	r := NewAgentRegistry()

	_, err := r.Get("ghost")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestAgentRegistry_RegisterRequiresID(t *testing.T) {
	r := NewAgentRegistry()

	err := r.Register(&model.AgentSpec{Name: "anonymous"})
	require.Error(t, err)

	var cfgErr *model.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestAgentRegistry_ListPreservesOrder(t *testing.T) {
	r := NewAgentRegistry()
	require.NoError(t, r.Register(&model.AgentSpec{ID: "b"}))
	require.NoError(t, r.Register(&model.AgentSpec{ID: "a"}))
	require.NoError(t, r.Register(&model.AgentSpec{ID: "c"}))

	ids := make([]string, 0, 3)
	for _, spec := range r.List() {
		ids = append(ids, spec.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestAgentRegistry_ReRegisterKeepsPosition(t *testing.T) {
	r := NewAgentRegistry()
	require.NoError(t, r.Register(&model.AgentSpec{ID: "a", Name: "first"}))
	require.NoError(t, r.Register(&model.AgentSpec{ID: "b"}))
	require.NoError(t, r.Register(&model.AgentSpec{ID: "a", Name: "second"}))

	specs := r.List()
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].ID)
	assert.Equal(t, "second", specs[0].Name)
}
