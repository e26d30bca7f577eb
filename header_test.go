package histotail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talostrading/histotail/histoerrors"
)

func TestOpenParsesHeader(t *testing.T) {
	timers := []Timer{
		{ID: 7, Name: "connect"},
		{ID: -1, Name: "négociation"},
		{ID: 3, Name: ""},
		{ID: 4, Name: "connect"}, // names may repeat
	}
	b := newLogBuilder(timers...).Bytes()

	r, err := Open(writeFile(t, b))
	require.NoError(t, err)
	defer r.Close()

	table := r.Table()
	assert.Equal(t, 4, table.Count())
	assert.Equal(t, timers, table.Timers())
	assert.Equal(t, len(b), r.Offset())

	name, ok := table.Lookup(-1)
	assert.True(t, ok)
	assert.Equal(t, "négociation", name)

	_, ok = table.Lookup(9)
	assert.False(t, ok)
}

func TestOpenEmptyHeader(t *testing.T) {
	r, err := Open(writeFile(t, newLogBuilder().Bytes()))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 0, r.Table().Count())
	assert.Equal(t, 4, r.Offset())
}

func TestOpenCorruptHeader(t *testing.T) {
	valid := newLogBuilder(Timer{ID: 1, Name: "connect"}).Bytes()

	tests := map[string][]byte{
		"empty file":            nil,
		"truncated count":       {0, 0},
		"negative count":        {0xff, 0xff, 0xff, 0xff},
		"count exceeds entries": {0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 0},
		"truncated id":          valid[:6],
		"truncated length":      valid[:10],
		"truncated name":        valid[:len(valid)-1],
		"negative length":       {0, 0, 0, 1, 0, 0, 0, 1, 0x80, 0, 0, 0},
		"invalid utf8":          {0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0xff},
		"duplicate id": newLogBuilder(
			Timer{ID: 1, Name: "connect"},
			Timer{ID: 1, Name: "send"},
		).Bytes(),
	}

	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := Open(writeFile(t, b))
			assert.Nil(t, r)
			assert.ErrorIs(t, err, histoerrors.ErrCorruptLog)
		})
	}
}

func TestTimerTableIsACopy(t *testing.T) {
	r, err := Open(writeFile(t, newLogBuilder(Timer{ID: 1, Name: "connect"}).Bytes()))
	require.NoError(t, err)
	defer r.Close()

	timers := r.Table().Timers()
	timers[0].Name = "changed"

	name, _ := r.Table().Lookup(1)
	assert.Equal(t, "connect", name)
	assert.Equal(t, "connect", r.Table().Timers()[0].Name)
}
