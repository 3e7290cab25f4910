package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opflow/opflow/internal/emit"
)

func smallCatalog(t *testing.T) (*Builder, StateRef, StateRef, SetupRef, OpRef) {
	t.Helper()
	b := NewBuilder()
	a := b.AddState("a", []string{"a"})
	c := b.AddState("c", []string{"c"})
	s := b.AddSetup("shared setup", func(e *emit.Emitter) error { return nil })
	op := b.AddRule([]SetupRef{s}, a, c, "a-to-c")
	return b, a, c, s, op
}

func TestFreezeRegistersReservedStdinStdout(t *testing.T) {
	b, a, _, _, _ := smallCatalog(t)
	cat := b.Freeze()

	if cat.NullIn == cat.NullOut {
		t.Errorf("NullIn and NullOut must be distinct states, got %v == %v", cat.NullIn, cat.NullOut)
	}
	if cat.StdinOp == cat.StdoutOp {
		t.Errorf("StdinOp and StdoutOp must be distinct operations, got %v == %v", cat.StdinOp, cat.StdoutOp)
	}

	stdin, ok := cat.Operation(cat.StdinOp)
	if !ok {
		t.Fatalf("Operation(StdinOp) not found")
	}
	if stdin.Input != cat.NullIn || stdin.Output != cat.NullIn {
		t.Errorf("StdinOp = %+v, want Input=Output=NullIn", stdin)
	}

	stdout, ok := cat.Operation(cat.StdoutOp)
	if !ok {
		t.Fatalf("Operation(StdoutOp) not found")
	}
	if stdout.Input != cat.NullOut || stdout.Output != cat.NullOut {
		t.Errorf("StdoutOp = %+v, want Input=Output=NullOut", stdout)
	}

	if got := a; got != StateRef(0) {
		t.Errorf("user state a = %v, want 0 (reserved states must be appended, not prepended)", got)
	}
}

func TestStatesAndOperationsExcludeReserved(t *testing.T) {
	b, _, _, _, op := smallCatalog(t)
	cat := b.Freeze()

	states := cat.States()
	if diff := cmp.Diff([]StateRef{0, 1}, states); diff != "" {
		t.Errorf("States() mismatch (-want +got):\n%s", diff)
	}
	ops := cat.Operations()
	if diff := cmp.Diff([]OpRef{op}, ops); diff != "" {
		t.Errorf("Operations() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetStateFirstMatchWins(t *testing.T) {
	b := NewBuilder()
	first := b.AddState("dup", []string{"x"})
	b.AddState("dup", []string{"y"})
	cat := b.Freeze()

	got, ok := cat.GetState("dup")
	if !ok {
		t.Fatalf("GetState(\"dup\") not found")
	}
	if got != first {
		t.Errorf("GetState(\"dup\") = %v, want first registration %v", got, first)
	}

	if _, ok := cat.GetState("null-in"); ok {
		t.Errorf("GetState(\"null-in\") should not resolve a reserved state by name")
	}
}

func TestGuessStateByExtension(t *testing.T) {
	b := NewBuilder()
	csrc := b.AddState("csrc", []string{"c", "h"})
	cat := b.Freeze()

	for _, path := range []string{"main.c", "lib/util.c", "header.h"} {
		got, ok := cat.GuessState(path)
		if !ok {
			t.Errorf("GuessState(%q) failed to resolve", path)
			continue
		}
		if got != csrc {
			t.Errorf("GuessState(%q) = %v, want %v", path, got, csrc)
		}
	}

	if _, ok := cat.GuessState("noext"); ok {
		t.Errorf("GuessState(\"noext\") should fail: no extension")
	}
	if _, ok := cat.GuessState("file.unknown"); ok {
		t.Errorf("GuessState(\"file.unknown\") should fail: unregistered extension")
	}
}

func TestPrimaryExtIsFirstExtension(t *testing.T) {
	b := NewBuilder()
	s := b.AddState("csrc", []string{"c", "h"})
	cat := b.Freeze()
	state, _ := cat.State(s)
	if got := state.PrimaryExt(); got != "c" {
		t.Errorf("PrimaryExt() = %q, want %q", got, "c")
	}
}

func TestOperationResolutionOutOfRangeFails(t *testing.T) {
	b, _, _, _, _ := smallCatalog(t)
	cat := b.Freeze()
	if _, ok := cat.Operation(OpRef(9999)); ok {
		t.Errorf("Operation(9999) should fail for an out-of-range handle")
	}
	if _, ok := cat.State(StateRef(9999)); ok {
		t.Errorf("State(9999) should fail for an out-of-range handle")
	}
	if _, ok := cat.Setup(SetupRef(9999)); ok {
		t.Errorf("Setup(9999) should fail for an out-of-range handle")
	}
}

func TestAddOperationCopiesSetupSlice(t *testing.T) {
	b := NewBuilder()
	a := b.AddState("a", []string{"a"})
	c := b.AddState("c", []string{"c"})
	setups := []SetupRef{b.AddSetup("s", func(e *emit.Emitter) error { return nil })}
	op := b.AddOperation("op", setups, a, c, func(e *emit.Emitter, in, out string) error { return nil })
	setups[0] = SetupRef(999)

	cat := b.Freeze()
	got, _ := cat.Operation(op)
	if diff := cmp.Diff([]SetupRef{0}, got.Setups); diff != "" {
		t.Errorf("Operation.Setups was aliased to the caller's slice (-want +got):\n%s", diff)
	}
}
