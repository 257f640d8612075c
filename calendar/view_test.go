package calendar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxwidget"
)

func TestParseView(t *testing.T) {
	for _, v := range Views() {
		got, err := ParseView(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ParseView("timelineDay")
	assert.True(t, errors.Is(err, hxwidget.ErrUnrecognizedView))
	assert.Equal(t, FallbackView, got)
}

func TestViewOf(t *testing.T) {
	assert.Equal(t, ViewAgendaWeek, ViewOf("agendaWeek"))
	assert.Equal(t, ViewMonth, ViewOf("foo"))
	assert.Equal(t, ViewMonth, ViewOf(""))
}

func TestViewsReturnsCopy(t *testing.T) {
	vs := Views()
	vs[0] = "changed"
	assert.Equal(t, ViewMonth, Views()[0])
}
