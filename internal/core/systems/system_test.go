package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name  string
	phase ExecutionPhase
	log   *[]string
	err   error
}

func (r recordingSystem) Name() string          { return r.name }
func (r recordingSystem) Phase() ExecutionPhase { return r.phase }
func (r recordingSystem) Update(Frame) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestSchedulerOrdersByPhase(t *testing.T) {
	var ran []string
	s := NewScheduler()
	require.NoError(t, s.Add(recordingSystem{name: "removal", phase: PhaseLateUpdate, log: &ran}))
	require.NoError(t, s.Add(recordingSystem{name: "manipulation", phase: PhaseUpdate, log: &ran}))
	require.NoError(t, s.Add(recordingSystem{name: "highlight", phase: PhasePostUpdate, log: &ran}))

	require.NoError(t, s.Run(Frame{Number: 1, Now: time.Now()}))
	assert.Equal(t, []string{"manipulation", "highlight", "removal"}, ran)
	assert.Equal(t, ran, s.Names())
}

func TestSchedulerKeepsRunningAfterError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	s := NewScheduler()
	require.NoError(t, s.Add(recordingSystem{name: "a", phase: PhaseUpdate, log: &ran, err: boom}))
	require.NoError(t, s.Add(recordingSystem{name: "b", phase: PhaseUpdate, log: &ran}))

	err := s.Run(Frame{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, ran)

	m, ok := s.Metrics("a")
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.ExecutionCount)
	assert.Equal(t, uint64(1), m.ErrorCount)
	assert.ErrorIs(t, m.LastError, boom)
}

func TestSchedulerRejectsDuplicates(t *testing.T) {
	var ran []string
	s := NewScheduler()
	require.NoError(t, s.Add(recordingSystem{name: "a", log: &ran}))
	assert.ErrorIs(t, s.Add(recordingSystem{name: "a", log: &ran}), ErrDuplicateSystem)
}
