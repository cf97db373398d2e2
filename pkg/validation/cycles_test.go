package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCyclesAcyclic(t *testing.T) {
	edges := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": nil,
	}
	assert.Empty(t, detectCycles(edges))
}

func TestDetectCyclesSimple(t *testing.T) {
	edges := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	cycles := detectCycles(edges)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, cycles[0])
	assert.Equal(t, "a -> b -> a", renderCycle(cycles[0]))
}

func TestDetectCyclesDeduplicatesRotations(t *testing.T) {
	// The same loop is reachable from every member; it must be reported once.
	edges := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}
	cycles := detectCycles(edges)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 4)
	assert.Equal(t, cycles[0][0], cycles[0][len(cycles[0])-1])
}

func TestDetectCyclesDisconnectedComponents(t *testing.T) {
	edges := map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"x": {"y"},
		"y": {"x"},
		"z": nil,
	}
	cycles := detectCycles(edges)
	assert.Len(t, cycles, 2)
}

func TestDetectCyclesSharedNode(t *testing.T) {
	// Two distinct loops through the same node are both reported.
	edges := map[string][]string{
		"a": {"b", "c"},
		"b": {"a"},
		"c": {"a"},
	}
	cycles := detectCycles(edges)
	assert.Len(t, cycles, 2)
}

func TestDetectCyclesEmptyGraph(t *testing.T) {
	assert.Empty(t, detectCycles(nil))
	assert.Empty(t, detectCycles(map[string][]string{}))
}
