package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/choo-deploy/deployd/internal/domain"
)

func jobWithHooks(matrix domain.HookMatrix) *domain.Job {
	return &domain.Job{Hooks: matrix}
}

func TestEvaluate_ForceDeployShortCircuitsRegardlessOfHookState(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{
		domain.HookTypeCI: {"tests": {Status: domain.HookStatusFailed}},
	})
	job.ForceDeploy = true

	res := Evaluate(job)

	assert.True(t, res.Ready())
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Pending)
}

func TestEvaluate_AllSuccessIsReady(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{
		domain.HookTypeCI:      {"tests": {Status: domain.HookStatusSuccess}},
		domain.HookTypeBuilder: {"quay": {Status: domain.HookStatusSuccess}},
	})

	assert.True(t, Evaluate(job).Ready())
}

func TestEvaluate_PendingCIHookBlocksReadiness(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{
		domain.HookTypeCI: {"tests": {Status: domain.HookStatusPending}},
	})

	res := Evaluate(job)

	assert.False(t, res.Ready())
	assert.Equal(t, []string{"tests"}, res.Pending)
	assert.Empty(t, res.Failed)
}

func TestEvaluate_FailedBuilderHookBlocksReadiness(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{
		domain.HookTypeBuilder: {"quay": {Status: domain.HookStatusFailed}},
	})

	res := Evaluate(job)

	assert.False(t, res.Ready())
	assert.Equal(t, []string{"quay"}, res.Failed)
}

func TestEvaluate_SCMHooksNeverGate(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{
		domain.HookTypeSCMPush:   {"webhook": {Status: domain.HookStatusPending}},
		domain.HookTypeSCMCreate: {"webhook": {Status: domain.HookStatusFailed}},
	})

	assert.True(t, Evaluate(job).Ready())
}

func TestEvaluate_EmptyHookMatrixIsReady(t *testing.T) {
	job := jobWithHooks(domain.HookMatrix{})

	assert.True(t, Evaluate(job).Ready())
}
