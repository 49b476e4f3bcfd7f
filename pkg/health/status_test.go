package health

import "testing"

func TestStatusMergeLattice(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Status
		wantKind statusKind
	}{
		{"ok+ok=ok", StatusOk(), StatusOk(), statusOk},
		{"ok+degraded=degraded", StatusOk(), Degraded(NewDegradationMessage("x")), statusDegraded},
		{"ok+down=down", StatusOk(), Down(NewFailureMessage("x")), statusDown},
		{"degraded+ok=degraded", Degraded(NewDegradationMessage("x")), StatusOk(), statusDegraded},
		{"degraded+degraded=degraded", Degraded(NewDegradationMessage("a")), Degraded(NewDegradationMessage("b")), statusDegraded},
		{"degraded+down=down", Degraded(NewDegradationMessage("x")), Down(NewFailureMessage("y")), statusDown},
		{"down+ok=down", Down(NewFailureMessage("x")), StatusOk(), statusDown},
		{"down+degraded=down", Down(NewFailureMessage("x")), Degraded(NewDegradationMessage("y")), statusDown},
		{"down+down=down", Down(NewFailureMessage("a")), Down(NewFailureMessage("b")), statusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Merge(tt.b)
			if got.kind != tt.wantKind {
				t.Fatalf("Merge(%v, %v) kind = %v, want %v", tt.a.kind, tt.b.kind, got.kind, tt.wantKind)
			}
		})
	}
}

func TestStatusMergeAccumulatesMessages(t *testing.T) {
	merged := Degraded(NewDegradationMessage("a")).Merge(Degraded(NewDegradationMessage("b")))
	if len(merged.degradation) != 2 {
		t.Fatalf("expected 2 degradation messages, got %d", len(merged.degradation))
	}

	merged = Down(NewFailureMessage("a")).Merge(Down(NewFailureMessage("b")))
	if len(merged.failure) != 2 {
		t.Fatalf("expected 2 failure messages, got %d", len(merged.failure))
	}
}

func TestIntrinsicAndSingularRollup(t *testing.T) {
	up := ComponentHealth{kind: kindIntrinsicallyUp}
	if !up.recursiveStatus().IsOk() {
		t.Fatal("intrinsically up should be ok")
	}

	down := ComponentHealth{kind: kindIntrinsicallyDown}
	if !down.recursiveStatus().IsDown() {
		t.Fatal("intrinsically down should be down")
	}

	sing := Singular(Down(NewFailureMessage("boom")))
	if !sing.recursiveStatus().IsDown() {
		t.Fatal("singular down should be down")
	}
}

func TestAdditiveRollupDownDominates(t *testing.T) {
	additive := Additive(
		Report{Name: "a", Health: IntrinsicallyUp()},
		Report{Name: "b", Health: IntrinsicallyDown()},
	)
	if !additive.recursiveStatus().IsDown() {
		t.Fatal("additive rollup with a down child must be down")
	}
}
