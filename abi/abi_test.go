package abi

import (
	"testing"

	"github.com/offsetlab/layoutkit/typedb"
)

func TestFromVersionName(t *testing.T) {
	tests := []struct {
		version string
		name    string
		ptr     uint32
	}{
		{"v0.47.05 linux64", "linux64", 8},
		{"v0.47.05 win64 STEAM", "win64", 8},
		{"v0.47.05 win32", "win32", 4},
		{"v0.44.12 OSX64", "osx64", 8},
		{"linux32", "linux32", 4},
	}

	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			abi, err := FromVersionName(tc.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if abi.Name != tc.name {
				t.Errorf("name: got %q, want %q", abi.Name, tc.name)
			}
			if abi.PointerSize != tc.ptr {
				t.Errorf("pointer size: got %d, want %d", abi.PointerSize, tc.ptr)
			}
		})
	}
}

func TestFromVersionNameUnknown(t *testing.T) {
	for _, version := range []string{"", "v0.47.05", "v0.47.05 amiga68k"} {
		if _, err := FromVersionName(version); err == nil {
			t.Errorf("expected error for %q", version)
		}
	}
}

func TestPrimitive(t *testing.T) {
	linux64, _ := FromVersionName("v1 linux64")
	win32, _ := FromVersionName("v1 win32")

	tests := []struct {
		abi   *ABI
		kind  typedb.Kind
		size  uint32
		align uint32
	}{
		{linux64, typedb.KindBool, 1, 1},
		{linux64, typedb.KindInt16, 2, 2},
		{linux64, typedb.KindInt32, 4, 4},
		{linux64, typedb.KindInt64, 8, 8},
		{linux64, typedb.KindPointer, 8, 8},
		{linux64, typedb.KindStdString, 32, 8},
		{win32, typedb.KindInt64, 8, 4},
		{win32, typedb.KindPointer, 4, 4},
		{win32, typedb.KindStdString, 24, 4},
	}

	for _, tc := range tests {
		info, ok := tc.abi.Primitive(tc.kind)
		if !ok {
			t.Errorf("%s/%s: not a primitive", tc.abi.Name, tc.kind)
			continue
		}
		if info.Size != tc.size || info.Align != tc.align {
			t.Errorf("%s/%s: got %d/%d, want %d/%d", tc.abi.Name, tc.kind, info.Size, info.Align, tc.size, tc.align)
		}
	}

	if _, ok := linux64.Primitive(typedb.KindNone); ok {
		t.Error("KindNone should not resolve")
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{13, 1, 13},
		{7, 0, 7},
	}
	for _, tc := range tests {
		if got := AlignTo(tc.offset, tc.align); got != tc.want {
			t.Errorf("AlignTo(%d, %d): got %d, want %d", tc.offset, tc.align, got, tc.want)
		}
	}
}
