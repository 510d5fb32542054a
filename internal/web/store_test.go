package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

func TestRunStore(t *testing.T) {
	s, err := NewRunStore(2)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Put(Run{ID: "a", Status: domain.RunRunning, SubmittedAt: base})
	s.Put(Run{ID: "b", Status: domain.RunRunning, SubmittedAt: base.Add(time.Minute)})

	require.NoError(t, s.Update("a", func(r *Run) {
		r.Status = domain.RunSuccess
		r.Result = &domain.Result{Files: map[string]string{"main.py": "x"}}
	}))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, got.Done())
	assert.Equal(t, "x", got.Result.Files["main.py"])

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "newest first")
	assert.Nil(t, list[1].Result.Files, "listing drops file contents")

	stored, err := s.Get("a")
	require.NoError(t, err)
	assert.NotNil(t, stored.Result.Files, "listing does not modify stored runs")

	// A third run evicts the least recently used one.
	s.Put(Run{ID: "c", SubmittedAt: base.Add(2 * time.Minute)})
	assert.Equal(t, 2, s.Len())
	_, err = s.Get("b")
	require.ErrorIs(t, err, errors.ErrRunNotFound)
	require.ErrorIs(t, s.Update("b", func(*Run) {}), errors.ErrRunNotFound)
}

func TestNewRunStore_InvalidSize(t *testing.T) {
	_, err := NewRunStore(0)
	require.Error(t, err)
}
