// Package readiness implements the Readiness Evaluator (C6): decides
// whether a job is deployable, pending, or failed given its hook matrix.
package readiness

import "github.com/choo-deploy/deployd/internal/domain"

// Result is the outcome of evaluating a job's gating hooks.
type Result struct {
	Failed  []string
	Pending []string
}

// Ready reports whether both Failed and Pending are empty.
func (r Result) Ready() bool {
	return len(r.Failed) == 0 && len(r.Pending) == 0
}

// Evaluate classifies a job's CI and builder hooks (the only types that
// gate deployment; scm-push/scm-create never gate). A force_deploy job
// always evaluates ready, regardless of hook state.
func Evaluate(job *domain.Job) Result {
	if job.ForceDeploy {
		return Result{}
	}

	var res Result
	for _, typ := range []domain.HookType{domain.HookTypeCI, domain.HookTypeBuilder} {
		names, ok := job.Hooks[typ]
		if !ok {
			continue
		}
		for name, entry := range names {
			if entry == nil {
				continue
			}
			switch entry.Status {
			case domain.HookStatusFailed:
				res.Failed = append(res.Failed, name)
			case domain.HookStatusPending:
				res.Pending = append(res.Pending, name)
			}
		}
	}
	return res
}
