package upload

import "sync/atomic"

// AdmissionController caps how many large-file uploads this process accepts
// at once. The counter is process-local: it protects local memory and disk,
// not cluster-wide fairness, so a multi-process deployment gets an effective
// ceiling of limit x processes.
type AdmissionController struct {
	limit  int64
	active atomic.Int64
}

func NewAdmissionController(limit int) *AdmissionController {
	if limit < 1 {
		limit = 1
	}
	return &AdmissionController{limit: int64(limit)}
}

// TryAdmit reserves a slot for one large upload. Returns false when the
// ceiling is reached; the caller surfaces that as a retryable rejection.
func (a *AdmissionController) TryAdmit() bool {
	if a.active.Add(1) > a.limit {
		a.active.Add(-1)
		return false
	}
	return true
}

// Release frees a slot. Must be called exactly once per successful TryAdmit,
// on both success and failure paths.
func (a *AdmissionController) Release() {
	if a.active.Add(-1) < 0 {
		a.active.Store(0)
	}
}

// Active returns the current number of admitted large uploads.
func (a *AdmissionController) Active() int {
	return int(a.active.Load())
}
