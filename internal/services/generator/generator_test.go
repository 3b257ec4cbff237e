package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapforge/clicker-server/internal/dependencies/mocks"
)

func TestGenerateThemed(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(2)
	gen := NewStatic(rnd)

	s, err := gen.Generate(context.Background(), "Lava")
	require.NoError(t, err)
	assert.Equal(t, "lava reactor", s.Name)
	assert.Contains(t, s.Description, "lava")
	assert.Equal(t, int64(3000), s.BaseCost)
	assert.Equal(t, int64(120), s.PpsIncrease)
}

func TestGenerateDefaultsTheme(t *testing.T) {
	gen := NewStatic(mocks.NewMockRandom())

	s, err := gen.Generate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "cosmic turbine", s.Name)
}
