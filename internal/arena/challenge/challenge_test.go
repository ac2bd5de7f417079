package challenge

import (
	"math/rand"
	"testing"
)

func TestAssignAndGet(t *testing.T) {
	tracker := NewTracker()

	assigned := tracker.Assign("rook", rand.New(rand.NewSource(3)))
	got, ok := tracker.Get("rook")
	if !ok {
		t.Fatal("expected an assignment")
	}
	if got.Goal != assigned.Goal || got.Target != assigned.Target {
		t.Fatalf("get = %+v, want %+v", got, assigned)
	}
	if got.Progress != 0 || got.Done {
		t.Fatalf("fresh challenge has progress: %+v", got)
	}

	if _, ok := tracker.Get("stranger"); ok {
		t.Fatal("unassigned participant should have no challenge")
	}
}

func TestRecordCompletes(t *testing.T) {
	tracker := NewTracker()
	tracker.assigned["rook"] = &Challenge{Goal: GoalCollect, Target: 3}

	if tracker.Record("rook", GoalCollect, 2) {
		t.Fatal("2 of 3 should not complete")
	}
	if !tracker.Record("rook", GoalCollect, 2) {
		t.Fatal("expected completion")
	}

	got, _ := tracker.Get("rook")
	if !got.Done || got.Progress != got.Target {
		t.Fatalf("challenge not capped at target: %+v", got)
	}

	// Further progress on a done challenge is a no-op.
	if tracker.Record("rook", GoalCollect, 1) {
		t.Fatal("completed challenge must not re-complete")
	}
}

func TestRecordIgnoresOtherGoals(t *testing.T) {
	tracker := NewTracker()
	tracker.assigned["rook"] = &Challenge{Goal: GoalDoors, Target: 4}

	tracker.Record("rook", GoalTraverse, 10)
	got, _ := tracker.Get("rook")
	if got.Progress != 0 {
		t.Fatalf("progress = %d, want 0", got.Progress)
	}
}

func TestResetStreak(t *testing.T) {
	tracker := NewTracker()
	tracker.assigned["rook"] = &Challenge{Goal: GoalUnscathed, Target: 5, Progress: 3}

	tracker.Reset("rook", GoalUnscathed)
	got, _ := tracker.Get("rook")
	if got.Progress != 0 {
		t.Fatalf("progress = %d, want 0 after reset", got.Progress)
	}

	// Reset never undoes a completed challenge.
	tracker.assigned["rook"].Done = true
	tracker.assigned["rook"].Progress = 5
	tracker.Reset("rook", GoalUnscathed)
	if got, _ := tracker.Get("rook"); !got.Done || got.Progress != 5 {
		t.Fatalf("reset touched a done challenge: %+v", got)
	}
}

func TestCompleted(t *testing.T) {
	tracker := NewTracker()
	tracker.assigned["a"] = &Challenge{Goal: GoalFirstBlood, Target: 1, Progress: 1, Done: true}
	tracker.assigned["b"] = &Challenge{Goal: GoalDoors, Target: 4}

	done := tracker.Completed()
	if len(done) != 1 || done[0] != "a" {
		t.Fatalf("completed = %v, want [a]", done)
	}

	tracker.Remove("a")
	if done := tracker.Completed(); len(done) != 0 {
		t.Fatalf("completed after remove = %v", done)
	}
}
