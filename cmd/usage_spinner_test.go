package cmd

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageFetchSpinnerShowsElapsedWhenSlow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	now := start
	model := newUsageFetchSpinnerModel("Fetching gas bills...", nil, func() time.Time { return now })

	assert.Contains(t, model.View(), "Fetching gas bills...")
	assert.NotContains(t, model.View(), "(")

	now = start.Add(12*time.Second + 400*time.Millisecond)
	assert.Contains(t, model.View(), "Fetching gas bills... (12s)")
}

func TestUsageFetchSpinnerQuitsWithFetchError(t *testing.T) {
	t.Parallel()

	model := newUsageFetchSpinnerModel("x", nil, time.Now)
	fetchErr := errors.New("boom")

	updated, cmd := model.Update(usageFetchDoneMsg{err: fetchErr})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	final, ok := updated.(usageFetchSpinnerModel)
	require.True(t, ok)
	assert.True(t, final.done)
	assert.ErrorIs(t, final.err, fetchErr)
	assert.Empty(t, final.View())
}
