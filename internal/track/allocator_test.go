package track

import (
	"math/rand/v2"
	"sync"
	"testing"
)

func TestAssignPicksMinimumExtentLowestIndexOnTies(t *testing.T) {
	a := New(4)
	a.Update(0, 50)
	a.Update(1, 20)
	a.Update(2, 20)
	a.Update(3, 70)

	if got := a.Assign(); got != 1 {
		t.Fatalf("expected lane 1, got %d", got)
	}

	a.Update(1, 90)
	if got := a.Assign(); got != 2 {
		t.Fatalf("expected lane 2, got %d", got)
	}
}

func TestAssignOnFreshPoolIsLaneZero(t *testing.T) {
	a := New(DefaultLanes)
	if got := a.Assign(); got != 0 {
		t.Fatalf("expected lane 0, got %d", got)
	}
	if a.Len() != 10 {
		t.Fatalf("expected 10 lanes, got %d", a.Len())
	}
}

func TestAssignSaturatedFallsBackToRandomLane(t *testing.T) {
	a := New(3, WithRand(rand.New(rand.NewPCG(1, 2))))
	for lane := range 3 {
		a.Update(lane, 85)
	}

	seen := map[int]bool{}
	for range 200 {
		lane := a.Assign()
		if lane < 0 || lane >= 3 {
			t.Fatalf("lane %d out of range", lane)
		}
		seen[lane] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected random spread across saturated lanes, got %v", seen)
	}
}

func TestAssignAtThresholdIsNotSaturated(t *testing.T) {
	a := New(2)
	a.Update(0, 80)
	a.Update(1, 90)
	if got := a.Assign(); got != 0 {
		t.Fatalf("extent equal to threshold should still be deterministic, got %d", got)
	}
}

func TestReleaseAndSweep(t *testing.T) {
	a := New(4)
	for lane := range 4 {
		a.Update(lane, float64(10*(lane+1)))
	}

	a.Release(2)
	if got := a.Snapshot()[2]; got != 0 {
		t.Fatalf("expected released lane to be 0, got %v", got)
	}

	reset := a.Sweep(map[int]struct{}{1: {}})
	if reset != 2 {
		t.Fatalf("expected 2 lanes reset, got %d", reset)
	}
	snap := a.Snapshot()
	want := []float64{0, 20, 0, 0}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("snapshot %v, want %v", snap, want)
		}
	}
}

func TestOutOfRangeIsNoop(t *testing.T) {
	a := New(2)
	a.Update(5, 40)
	a.Update(-1, 40)
	a.Release(9)
	for _, extent := range a.Snapshot() {
		if extent != 0 {
			t.Fatalf("out of range calls must not mutate lanes: %v", a.Snapshot())
		}
	}
}

func TestResetFreesEverything(t *testing.T) {
	a := New(3)
	a.Update(0, 30)
	a.Update(2, -150)
	a.Reset()
	for _, extent := range a.Snapshot() {
		if extent != 0 {
			t.Fatalf("expected all lanes free, got %v", a.Snapshot())
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	a := New(2)
	snap := a.Snapshot()
	snap[0] = 99
	if a.Snapshot()[0] != 0 {
		t.Fatal("snapshot must not alias allocator state")
	}
}

func TestTopPositions(t *testing.T) {
	if Top(0) != 10 || Top(3) != 31 || Top(9) != 73 {
		t.Fatalf("unexpected lane tops: %v %v %v", Top(0), Top(3), Top(9))
	}
}

func TestConcurrentAccess(t *testing.T) {
	a := New(DefaultLanes)
	var wg sync.WaitGroup
	for worker := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				lane := a.Assign()
				a.Update(lane, float64((i+worker)%100))
				if i%7 == 0 {
					a.Release(lane)
				}
			}
		}()
	}
	wg.Wait()
	if len(a.Snapshot()) != DefaultLanes {
		t.Fatal("lane count changed under concurrency")
	}
}
