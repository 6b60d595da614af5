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
				Phase:    PhaseLayout,
				Kind:     KindNotFound,
				Path:     []string{"unit", "status", "labors"},
				TypeName: "unit",
				Detail:   "no such member",
			},
			contains: []string{"[layout]", "not_found", "unit.status.labors", "type unit", "no such member"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseScript,
				Kind:  KindInvalidTag,
			},
			contains: []string{"[script]", "invalid_tag"},
		},
		{
			name: "with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "parse symbols.xml",
				Cause:  errors.New("unexpected EOF"),
			},
			contains: []string{"[load]", "invalid_data", "parse symbols.xml", "caused by: unexpected EOF"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, want := range tc.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q does not contain %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := NotFound(PhaseResolve, "enum", "profession")

	if !errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindNotFound}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseLayout, Kind: KindNotFound}) {
		t.Error("unexpected match on different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindInvalidTag}) {
		t.Error("unexpected match on different kind")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("io failure")
	err := Wrap(PhaseLoad, KindInvalidData, cause, "read database")

	if !errors.Is(err, cause) {
		t.Error("expected unwrap to reach cause")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseLayout, KindOutOfBounds).
		Path("world", "units", "all").
		Type("vector").
		Detail("index %d past end", 12).
		Value(12).
		Build()

	if err.Phase != PhaseLayout || err.Kind != KindOutOfBounds {
		t.Errorf("phase/kind: got %s/%s", err.Phase, err.Kind)
	}
	if len(err.Path) != 3 || err.Path[2] != "all" {
		t.Errorf("path: got %v", err.Path)
	}
	if err.Detail != "index 12 past end" {
		t.Errorf("detail: got %q", err.Detail)
	}
	if err.Value != 12 {
		t.Errorf("value: got %v", err.Value)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"not found", NotFound(PhaseResolve, "bitfield", "unit_flags1"), KindNotFound},
		{"duplicate", Duplicate(PhaseLoad, "compound", "unit"), KindDuplicate},
		{"malformed path", MalformedPath(PhaseScript, "a..b"), KindMalformedPath},
		{"missing attr", MissingAttr(PhaseScript, "offset", "type"), KindMissingAttr},
		{"invalid tag", InvalidTag(PhaseScript, "offsets"), KindInvalidTag},
		{"out of bounds", OutOfBounds(PhaseLayout, []string{"flags"}, 3, 3), KindOutOfBounds},
		{"not single bit", NotSingleBit(PhaseReport, "size_level", 3), KindNotSingleBit},
		{"cycle", Cycle(PhaseLayout, "unit"), KindCycle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Kind != tc.kind {
				t.Errorf("kind: got %s, want %s", tc.err.Kind, tc.kind)
			}
			if tc.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
