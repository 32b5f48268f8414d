package domain

import "testing"

func TestJobRun_CanRetry(t *testing.T) {
	j := &JobRun{RetryCount: 2, MaxRetries: 3}
	if !j.CanRetry() {
		t.Fatal("expected CanRetry true when RetryCount < MaxRetries")
	}

	j.RetryCount = 3
	if j.CanRetry() {
		t.Fatal("expected CanRetry false once RetryCount reaches MaxRetries")
	}
}

func TestPipeline_IsLastStep(t *testing.T) {
	p := &Pipeline{Steps: []PipelineStep{{}, {}, {}}, CurrentStep: 1}
	if p.IsLastStep() {
		t.Fatal("step 1 of 3 should not be last")
	}
	p.CurrentStep = 2
	if !p.IsLastStep() {
		t.Fatal("step 2 of 3 (index 2, len 3) should be last")
	}
}
