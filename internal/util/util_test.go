package util

import (
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMoveItem(t *testing.T) {
	t.Parallel()

	t.Run("moves first to last", func(t *testing.T) {
		items := []string{"A", "B", "C"}
		require.Equal(t, []string{"B", "C", "A"}, MoveItem(items, 0, 2))
		require.Equal(t, []string{"A", "B", "C"}, items)
	})

	t.Run("moves last to first", func(t *testing.T) {
		require.Equal(t, []string{"C", "A", "B"}, MoveItem([]string{"A", "B", "C"}, 2, 0))
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		require.Equal(t, []int{1, 2}, MoveItem([]int{1, 2}, 0, 5))
		require.Equal(t, []int{1, 2}, MoveItem([]int{1, 2}, -1, 0))
	})
}

func TestRemoveAt(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"A", "C"}, RemoveAt([]string{"A", "B", "C"}, 1))
	require.Equal(t, []string{"A"}, RemoveAt([]string{"A"}, 3))
}

func TestDebouncerRunsOnlyLatest(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value

	for _, text := range []string{"p", "ph", "phở"} {
		value := text
		d.Trigger(func() {
			calls.Add(1)
			last.Store(value)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "phở", last.Load())
	require.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	require.True(t, d.Pending())
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	ms := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC).UnixMilli()
	require.Equal(t, "05/03/2024", FormatDate(strconv.FormatInt(ms, 10), time.UTC))
	require.Equal(t, "05/03/2024", FormatDate("2024-03-05T10:00:00Z", time.UTC))
	require.Equal(t, "", FormatDate("", time.UTC))
	require.Equal(t, "", FormatDate("yesterday", time.UTC))
}
