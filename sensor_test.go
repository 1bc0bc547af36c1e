package htm

import (
	"errors"
	"testing"

	"github.com/htm-community/cla/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorLayer(t *testing.T) {
	sl, err := NewSensorLayer(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, sl.Len())

	cell := sl.Cell(2, 1)
	require.NotNil(t, cell)
	assert.Equal(t, 2, cell.X)
	assert.Equal(t, 1, cell.Y)
	assert.Same(t, cell, sl.CellAt(sl.Index(2, 1)))
	assert.Nil(t, sl.Cell(3, 0))
	assert.Nil(t, sl.Cell(0, -1))

	_, err = NewSensorLayer(0, 2)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestSensorLayerFeed(t *testing.T) {
	sl, err := NewSensorLayer(3, 2)
	require.NoError(t, err)

	pattern := utils.Make2DBool([][]int{
		{1, 0},
		{0, 0},
		{0, 1},
	})
	require.NoError(t, sl.Feed(pattern))

	assert.True(t, sl.Cell(0, 0).Active)
	assert.True(t, sl.IsActive(sl.Index(2, 1)))
	assert.False(t, sl.Cell(1, 1).Active)
	assert.Equal(t, "10\n00\n01\n", sl.Snapshot().String())

	//mismatched patterns leave the layer untouched
	assert.True(t, errors.Is(sl.Feed(pattern[:2]), ErrInvalidArgument))
	bad := utils.Make2DBool([][]int{{0, 0}, {0, 0}, {0}})
	assert.True(t, errors.Is(sl.Feed(bad), ErrInvalidArgument))
	assert.True(t, sl.Cell(0, 0).Active)

	sl.Clear()
	assert.Equal(t, 0, sl.Snapshot().TotalNonZeroCount())
}
