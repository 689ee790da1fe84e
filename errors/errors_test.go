package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseLower,
				Kind:    KindTypeMismatch,
				Path:    []string{"callee-context", "chain-id", "part1"},
				GoType:  "string",
				WitType: "u64",
				Detail:  "cannot lower",
			},
			contains: []string{"[lower]", "type_mismatch", "callee-context.chain-id.part1", "string", "u64", "cannot lower"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRuntime,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[runtime]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhasePrepare,
				Kind:   KindIndexOverflow,
				Detail: "execute-operation",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[prepare]", "index_overflow", "execute-operation", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhasePrepare,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLower,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseLower, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseConvert, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLower, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
}

func TestIndexOverflow(t *testing.T) {
	err := IndexOverflow([]string{"effect-id", "index"}, "18446744073709551616")

	if !errors.Is(err, ErrIndexOverflow) {
		t.Fatal("IndexOverflow should match ErrIndexOverflow")
	}
	if err.WitType != "u64" {
		t.Errorf("WitType = %q, want u64", err.WitType)
	}
	if !strings.Contains(err.Error(), "effect-id.index") {
		t.Errorf("error %q should contain the field path", err.Error())
	}
	if !strings.Contains(err.Error(), "18446744073709551616") {
		t.Errorf("error %q should contain the offending index", err.Error())
	}

	wrapped := Wrap(PhasePrepare, KindIndexOverflow, err, "execute-effect")
	if !errors.Is(wrapped, ErrIndexOverflow) {
		t.Error("a wrapped overflow should still match ErrIndexOverflow through the cause chain")
	}

	var target *Error
	if !errors.As(wrapped, &target) || target.Phase != PhasePrepare {
		t.Errorf("errors.As should find the outer prepare error, got %v", target)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLower, KindTypeMismatch).
		Path("session-id", "kind").
		GoType("string").
		WitType("u64").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "uint64", "string").
		Build()

	if err.Phase != PhaseLower {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLower)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "session-id" || err.Path[1] != "kind" {
		t.Errorf("Path = %v, want [session-id kind]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected uint64, got string" {
		t.Errorf("Detail = %v, want 'expected uint64, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseLower, []string{"val"}, 300, "u8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseLower, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseLower, []string{"list"}, 70000, 8)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint32(70000) {
			t.Errorf("Value = %v, want 70000", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseLower, "string types")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}

func TestMissingExportError(t *testing.T) {
	t.Run("single export", func(t *testing.T) {
		err := NewMissingExportError("service", []string{"query-application"})
		msg := err.Error()
		if msg != "service module is missing 1 export: query-application" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("multiple exports", func(t *testing.T) {
		err := NewMissingExportError("contract", []string{"execute-operation", "cabi_realloc"})
		msg := err.Error()
		if !strings.Contains(msg, "2 exports") {
			t.Errorf("error should contain count, got %q", msg)
		}
		if !strings.Contains(msg, "cabi_realloc") {
			t.Errorf("error should contain export name, got %q", msg)
		}
	})

	t.Run("empty exports", func(t *testing.T) {
		err := NewMissingExportError("contract", nil)
		if !strings.Contains(err.Error(), "no exports specified") {
			t.Errorf("empty error should have specific message, got: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewMissingExportError("contract", []string{"memory"})
		if !errors.Is(err, &MissingExportError{}) {
			t.Error("errors.Is should match MissingExportError")
		}
	})
}
