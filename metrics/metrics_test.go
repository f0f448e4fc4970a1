package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/report"
)

func TestRecorderCountsStepsByResult(t *testing.T) {
	r := NewRecorder("run-1")
	r.StepRecorded(framework.StepResult{ID: framework.StepID{Name: "a"}, Status: report.StatusCompleted, Duration: time.Second})
	r.StepRecorded(framework.StepResult{ID: framework.StepID{Name: "b"}, Status: report.StatusFailed})
	r.StepRecorded(framework.StepResult{ID: framework.StepID{Name: "c"}, Skipped: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepsTotal.WithLabelValues(resultCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepsTotal.WithLabelValues(resultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepsTotal.WithLabelValues(resultSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stepDuration.WithLabelValues("a", resultCompleted)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stepDuration))
}

func TestRecorderRunOutcome(t *testing.T) {
	r := NewRecorder("run-2")
	r.RunFinished(framework.Results{}, 3*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runSuccess))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.runDuration))

	r.RunFinished(framework.Results{SuiteErrors: []error{errors.New("setup failed")}}, time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.runSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.suiteErrorsTotal))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder("run-3")
	r.StepRecorded(framework.StepResult{ID: framework.StepID{Name: "a"}, Status: report.StatusCompleted})
	r.RunFinished(framework.Results{}, time.Second)

	path := filepath.Join(t.TempDir(), "smoke.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `smoke_steps_total{result="completed",run_id="run-3"} 1`), text)
	assert.Contains(t, text, "smoke_run_success")
}
