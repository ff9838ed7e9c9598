package simulation

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-monitor-service/internal/domain"
	"github.com/couchcryptid/flood-monitor-service/internal/observability"
)

const (
	testVisualPeriod    = 100 * time.Millisecond
	testHeartbeatPeriod = 60 * time.Second
)

type schedulerFixture struct {
	scheduler *Scheduler
	engine    *Engine
	clock     *clockwork.FakeClock
	done      chan error
	cancel    context.CancelFunc

	stopOnce sync.Once
	runErr   error
	timedOut bool
}

// stop cancels the run context and waits for Run to return. Safe to
// call more than once.
func (f *schedulerFixture) stop() (error, bool) {
	f.stopOnce.Do(func() {
		f.cancel()
		select {
		case f.runErr = <-f.done:
		case <-time.After(time.Second):
			f.timedOut = true
		}
	})
	return f.runErr, f.timedOut
}

func startScheduler(t *testing.T, simulationEnabled bool) *schedulerFixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	params := risingParams()
	params.NoiseRange = 0

	engine := NewEngine(EngineConfig{
		Params:   params,
		Stations: []domain.Station{testStation(100)},
		Clock:    clock,
		Rand:     rand.New(rand.NewSource(1)),
		Logger:   observability.NewTestLogger(),
		Metrics:  observability.NewMetricsForTesting(),
	})
	scheduler := NewScheduler(engine, clock, testVisualPeriod, testHeartbeatPeriod,
		simulationEnabled, observability.NewTestLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	f := &schedulerFixture{scheduler: scheduler, engine: engine, clock: clock, done: done, cancel: cancel}
	t.Cleanup(func() {
		if _, timedOut := f.stop(); timedOut {
			t.Error("scheduler did not stop after context cancellation")
		}
	})
	return f
}

func (f *schedulerFixture) lastTick() (time.Time, bool) {
	if f.engine.CheckReadiness(context.Background()) != nil {
		return time.Time{}, false
	}
	return f.engine.Snapshot()[0].LastReading.Timestamp, true
}

// waitForTickAt advances the fake clock to the next expected tick and
// waits for the scheduler goroutine to apply it.
func (f *schedulerFixture) waitForTickAt(t *testing.T, step time.Duration) time.Time {
	t.Helper()
	f.clock.Advance(step)
	want := f.clock.Now()
	require.Eventually(t, func() bool {
		ts, ok := f.lastTick()
		return ok && ts.Equal(want)
	}, time.Second, time.Millisecond)
	return want
}

func TestScheduler_VisualMode(t *testing.T) {
	f := startScheduler(t, true)
	ctx := context.Background()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	// Each visual period produces exactly one advancement stamped with
	// the ticker's delivery time.
	first := f.waitForTickAt(t, testVisualPeriod)
	second := f.waitForTickAt(t, testVisualPeriod)
	assert.Equal(t, testVisualPeriod, second.Sub(first))

	s := f.engine.Snapshot()[0]
	assert.Len(t, s.History, 2)
}

func TestScheduler_HeartbeatMode(t *testing.T) {
	f := startScheduler(t, false)
	ctx := context.Background()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	// A visual period elapsing must not tick the heartbeat schedule.
	f.clock.Advance(testVisualPeriod)
	_, ticked := f.lastTick()
	assert.False(t, ticked)

	f.waitForTickAt(t, testHeartbeatPeriod-testVisualPeriod)

	// Heartbeat advancement perturbs the level only; with zero noise
	// the reading is unchanged apart from its timestamp.
	s := f.engine.Snapshot()[0]
	assert.Equal(t, 100.0, s.LastReading.WaterLevel)
	assert.Equal(t, 0.0, s.LastReading.SolarVoltage)
}

func TestScheduler_OfflineStopsTicking(t *testing.T) {
	f := startScheduler(t, true)
	ctx := context.Background()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.waitForTickAt(t, testVisualPeriod)

	f.scheduler.SetOnline(false)
	assert.False(t, f.scheduler.Online())

	// Once the scheduler disarms there are no clock waiters left, so
	// advancing time cannot produce ticks.
	waitForNoWaiters(t, f.clock)
	before, _ := f.lastTick()
	f.clock.Advance(10 * time.Minute)

	time.Sleep(20 * time.Millisecond)
	after, _ := f.lastTick()
	assert.Equal(t, before, after)

	// Coming back online re-arms and ticking resumes.
	f.scheduler.SetOnline(true)
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.waitForTickAt(t, testVisualPeriod)
}

func TestScheduler_ModeToggleSwitchesCadence(t *testing.T) {
	f := startScheduler(t, true)
	ctx := context.Background()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	// Park the scheduler offline so the mode switch is applied before
	// the next ticker is armed.
	f.scheduler.SetOnline(false)
	waitForNoWaiters(t, f.clock)
	f.scheduler.SetSimulation(false)
	f.scheduler.SetOnline(true)
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	// The armed ticker is now the heartbeat one.
	f.clock.Advance(testVisualPeriod)
	_, ticked := f.lastTick()
	assert.False(t, ticked)

	f.waitForTickAt(t, testHeartbeatPeriod-testVisualPeriod)
	assert.Equal(t, 0.0, f.engine.Snapshot()[0].LastReading.SolarVoltage)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	f := startScheduler(t, true)

	err, timedOut := f.stop()
	require.False(t, timedOut, "scheduler did not return after cancellation")
	assert.NoError(t, err)
}

func TestScheduler_FlagAccessors(t *testing.T) {
	f := startScheduler(t, true)

	assert.True(t, f.scheduler.SimulationEnabled())
	assert.True(t, f.scheduler.Online())

	f.scheduler.SetSimulation(false)
	assert.False(t, f.scheduler.SimulationEnabled())

	// Setting the same value twice is a no-op and must not wedge the
	// notification channel.
	f.scheduler.SetSimulation(false)
	f.scheduler.SetSimulation(false)
	assert.False(t, f.scheduler.SimulationEnabled())
}

// waitForNoWaiters polls until the scheduler has stopped its ticker.
// clockwork only exposes waiting-for-N-waiters, not the inverse, so
// this advances nothing and inspects via a zero-duration block.
func waitForNoWaiters(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		return clock.BlockUntilContext(ctx, 1) != nil
	}, time.Second, 5*time.Millisecond)
}
