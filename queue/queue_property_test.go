package queue

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestProperty_BackToFrontReversesInsertionOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(rt, "n")

		var q Queue[*record]
		var want []int
		for _, r := range records(n) {
			q.Enqueue(r)
			want = append(want, r.id)
		}
		slices.Reverse(want)

		var got []int
		for r := range q.All(BackToFront) {
			got = append(got, r.id)
		}
		require.Equal(rt, want, got)
	})
}

func TestProperty_DetachDuringTraversalVisitsEachRecordOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(rt, "n")
		dir := Direction(rapid.IntRange(0, 1).Draw(rt, "dir"))
		detach := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "detach")

		var q Queue[*record]
		rs := records(n)
		for _, r := range rs {
			q.Enqueue(r)
		}

		seen := make(map[int]int, n)
		var kept []int
		for r := range q.All(dir) {
			seen[r.id]++
			if detach[r.id-1] {
				q.Detach(r)
			} else {
				kept = append(kept, r.id)
			}
		}

		require.Len(rt, seen, n)
		for id, count := range seen {
			require.Equalf(rt, 1, count, "record %d visited %d times", id, count)
		}
		require.Equal(rt, len(kept), q.Len())

		var remaining []int
		for r := range q.All(dir) {
			remaining = append(remaining, r.id)
		}
		require.Equal(rt, kept, remaining)
	})
}
