package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent_StampsComponentAndJobID(t *testing.T) {
	evt := NewEvent(EventJobComplete, "job-1")

	assert.Equal(t, "orchestrator", evt.Component)
	assert.Equal(t, EventJobComplete, evt.Type)
	assert.Equal(t, "job-1", evt.JobID)
}

func TestEvent_WithDetailsAndMeta(t *testing.T) {
	evt := NewEvent(EventDeployRequested, "job-1").
		WithDetails(map[string]any{"deployer": "quay"}).
		WithMeta(map[string]any{"commit": "abc"})

	assert.Equal(t, "quay", evt.Details["deployer"])
	assert.Equal(t, "abc", evt.Meta["commit"])
}
