package vitals

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncer_SingleCallFiresAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 200*time.Millisecond)
	defer d.Stop()

	var fires int32
	d.Call(func() { atomic.AddInt32(&fires, 1) })

	require.Equal(t, int32(0), atomic.LoadInt32(&fires))

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestDebouncer_BurstCoalescesToOneTrailingFire(t *testing.T) {
	// 10 calls 20ms apart (~180ms burst) stay inside the 400ms max
	// wait, so exactly one trailing fire ~100ms after the last call
	d := NewDebouncer(100*time.Millisecond, 400*time.Millisecond)
	defer d.Stop()

	var fires int32
	for i := 0; i < 10; i++ {
		d.Call(func() { atomic.AddInt32(&fires, 1) })
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestDebouncer_MaxWaitForcesFireMidBurst(t *testing.T) {
	// calls every 40ms for ~600ms with a 200ms max wait: forced fires
	// keep happening during the burst, plus the trailing fire
	d := NewDebouncer(100*time.Millisecond, 200*time.Millisecond)
	defer d.Stop()

	var fires int32
	for i := 0; i < 15; i++ {
		d.Call(func() { atomic.AddInt32(&fires, 1) })
		time.Sleep(40 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)

	got := atomic.LoadInt32(&fires)
	require.GreaterOrEqual(t, got, int32(2), "expected at least one forced fire plus the trailing fire")
}

func TestDebouncer_LatestFunctionWins(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 500*time.Millisecond)
	defer d.Stop()

	var got atomic.Value
	d.Call(func() { got.Store("first") })
	d.Call(func() { got.Store("second") })

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, "second", got.Load())
}

func TestDebouncer_StopCancelsPendingFire(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 500*time.Millisecond)

	var fires int32
	d.Call(func() { atomic.AddInt32(&fires, 1) })
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&fires))
}
