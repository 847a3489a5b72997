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
				Phase:    PhaseLookup,
				Kind:     KindNotFound,
				Category: "MpiComm",
				Detail:   "virtual id 0x7 not found",
			},
			contains: []string{"[lookup]", "not_found", "in MpiComm", "0x7"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAllocate,
				Kind:  KindExhausted,
			},
			contains: []string{"[allocate]", "exhausted"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindRegistration,
				Detail: "register mpi_vid#comm_create",
				Cause:  errors.New("module already instantiated"),
			},
			contains: []string{"[host]", "registration", "caused by", "already instantiated"},
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

func TestError_MinimalHasNoCategory(t *testing.T) {
	err := &Error{Phase: PhaseParse, Kind: KindInvalidInput}
	if strings.Contains(err.Error(), " in ") {
		t.Errorf("unexpected category section in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseRestore,
		Kind:  KindCanceled,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not follow the cause chain")
	}
}

func TestError_Is(t *testing.T) {
	err := UnknownVirtual(PhaseLookup, "MpiGroup", 3)

	if !err.Is(&Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseRemove, Kind: KindNotFound}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLookup, Kind: KindExhausted}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseLookup, Kind: KindNotFound}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}

	var se *Error
	if !errors.As(error(err), &se) || se.Category != "MpiGroup" {
		t.Errorf("errors.As = %+v", se)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseUpdate, KindNotFound).
		Category("MpiOp").
		Value(uint64(42)).
		Cause(cause).
		Detail("cannot remap %#x", 42).
		Build()

	if err.Phase != PhaseUpdate {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseUpdate)
	}
	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
	if err.Category != "MpiOp" {
		t.Errorf("Category = %q", err.Category)
	}
	if err.Value != uint64(42) {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Detail != "cannot remap 0x2a" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("Cause not reachable")
	}

	plain := New(PhaseParse, KindInvalidInput).Detail("no args").Build()
	if plain.Detail != "no args" {
		t.Errorf("Detail = %q", plain.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"UnknownVirtual", UnknownVirtual(PhaseRemove, "MpiComm", 1), PhaseRemove, KindNotFound},
		{"UnknownReal", UnknownReal(PhaseLookup, "MpiComm", 1), PhaseLookup, KindNotFound},
		{"Exhausted", Exhausted("MpiType", 0xff), PhaseAllocate, KindExhausted},
		{"Duplicate", Duplicate("MpiGroup", 7, 1), PhaseCreate, KindDuplicate},
		{"NullHandle", NullHandle(PhaseCreate, "MpiOp"), PhaseCreate, KindNullHandle},
		{"UnknownCategory", UnknownCategory(PhaseParse, "window"), PhaseParse, KindUnknownCategory},
		{"InvalidInput", InvalidInput(PhaseParse, "bad"), PhaseParse, KindInvalidInput},
		{"Registration", Registration("mpi_vid", "comm_create", errors.New("x")), PhaseHost, KindRegistration},
		{"Canceled", Canceled("MpiComm", errors.New("ctx")), PhaseRestore, KindCanceled},
		{"Wrap", Wrap(PhaseUpdate, KindInvalidInput, errors.New("x"), "d"), PhaseUpdate, KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
