package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func activeSources(srcs ...int) SourceActivity {
	return func(syn Synapse) bool {
		for _, s := range srcs {
			if syn.Src == s {
				return true
			}
		}
		return false
	}
}

func TestSegmentActivity(t *testing.T) {
	seg := &Segment{Kind: Distal, ActivationThreshold: 0.5}
	seg.AddSynapse(0, 0, 0, 0.6)
	seg.AddSynapse(1, 0, 1, 0.6)
	seg.AddSynapse(2, 1, 0, 0.4)
	idx := seg.AddSynapse(3, 1, 1, 0.6)
	assert.Equal(t, 3, idx)

	assert.True(t, seg.HasSource(2))
	assert.False(t, seg.HasSource(4))

	//disconnected synapse does not count
	assert.Equal(t, 1, seg.ActiveSynapseCount(0.5, activeSources(0, 2)))
	assert.Equal(t, []int{0, 2}, seg.ActiveSynapseIndices(activeSources(0, 2)))

	//1 of 4 is below half
	assert.False(t, seg.IsActive(0.5, activeSources(0, 2)))
	assert.True(t, seg.IsActive(0.5, activeSources(0, 1)))
	assert.False(t, seg.IsActive(0.5, activeSources()))

	empty := &Segment{ActivationThreshold: 0.5}
	assert.False(t, empty.IsActive(0.5, activeSources(0)))
}

func TestSegmentUpdateSynapsesClamps(t *testing.T) {
	seg := &Segment{}
	seg.AddSynapse(0, 0, 0, 0.95)
	seg.AddSynapse(1, 0, 1, 0.02)

	seg.updateSynapses([]int{0}, 0.1, 1.0)
	seg.updateSynapses([]int{1}, -0.05, 1.0)
	assert.Equal(t, []float64{1.0, 0.0}, seg.Permanences())
}

func TestSegmentKindString(t *testing.T) {
	assert.Equal(t, "proximal", Proximal.String())
	assert.Equal(t, "distal", Distal.String())
	assert.Equal(t, "unknown", SegmentKind(7).String())
}
