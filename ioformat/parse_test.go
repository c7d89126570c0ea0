package ioformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslab/schedsim/job"
)

func TestParseDescriptorsSkipsCommentsAndBlankLines(t *testing.T) {
	in := "# a comment\n\n1\t0\t5\t1\t64\n"
	descs, err := ParseDescriptors(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, job.Descriptor{ID: 1, ArrivalTick: 0, ServiceTicks: 5, Priority: 1, MemBytes: 64}, descs[0])
}

func TestParseDescriptorsSkipsShortAndMalformedLines(t *testing.T) {
	in := "1\t0\t5\n" + // too few fields
		"2\t0\tx\t1\t64\n" + // non-integer field
		"3\t1\t4\t2\t128\n"
	descs, err := ParseDescriptors(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, 3, descs[0].ID)
}

func TestParseDescriptorsMultipleLines(t *testing.T) {
	in := "1\t0\t6\t2\t64\n2\t1\t2\t1\t64\n"
	descs, err := ParseDescriptors(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, 1, descs[0].ID)
	assert.Equal(t, 2, descs[1].ID)
}

func TestArrivalsDeliversAllThenCloses(t *testing.T) {
	descs := []job.Descriptor{{ID: 1}, {ID: 2}}
	ch := Arrivals(descs)

	var got []job.Descriptor
	for d := range ch {
		got = append(got, d)
	}
	assert.Equal(t, descs, got)
}
