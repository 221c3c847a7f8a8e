package cron

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterJobs(t *testing.T) {
	mgr := NewCronManager(
		Entry{Name: "dirty", Spec: "0 */5 * * * *", Job: cron.FuncJob(func() {})},
		Entry{Name: "disabled", Spec: "", Job: cron.FuncJob(func() {})},
	)
	require.NoError(t, mgr.RegisterJobs())
	assert.Len(t, mgr.engine.Entries(), 1)
}

func TestRegisterJobs_InvalidSpec(t *testing.T) {
	mgr := NewCronManager(Entry{Name: "broken", Spec: "every minute", Job: cron.FuncJob(func() {})})
	assert.Error(t, mgr.RegisterJobs())
}

func TestInitCron_RunsJobs(t *testing.T) {
	var runs atomic.Int32
	mgr := NewCronManager(Entry{Name: "tick", Spec: "* * * * * *", Job: cron.FuncJob(func() { runs.Add(1) })})
	require.NoError(t, InitCron(mgr))
	defer mgr.Stop()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
