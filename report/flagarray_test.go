package report

import (
	"bytes"
	"testing"
)

func evalFlagArray(t *testing.T, ctx *Context, doc string) (string, bool) {
	t.Helper()
	var buf bytes.Buffer
	ok := ctx.EvalFlagArray(NewWriter(&buf), parseScript(t, doc))
	return buf.String(), ok
}

func TestEvalFlagArray(t *testing.T) {
	ctx := newTestContext(t, "v0.47.05 linux64")

	got, ok := evalFlagArray(t, ctx, `
<flag-array name="goals" bitfield="unit_flags">
	<flag name="swap" flags="can_swap"/>
	<flag name="lost" flags="can_swap|marauder"/>
</flag-array>`)

	if !ok {
		t.Error("expected success")
	}
	want := "size=2\n" +
		"1\\name=\"swap\"\n" +
		"1\\value=0x00000001\n" +
		"2\\name=\"lost\"\n" +
		"2\\value=0x00000005\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestEvalFlagArrayUnknownBitfield(t *testing.T) {
	ctx := newTestContext(t, "v0.47.05 linux64")

	got, ok := evalFlagArray(t, ctx,
		`<flag-array name="goals" bitfield="job_flags"><flag name="x" flags="dead"/></flag-array>`)
	if ok {
		t.Error("expected failure")
	}
	if got != "" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestEvalFlagArrayWideFlag(t *testing.T) {
	ctx := newTestContext(t, "v0.47.05 linux64")

	// size_level is 3 bits wide: excluded, but dead still combines
	got, ok := evalFlagArray(t, ctx, `
<flag-array name="goals" bitfield="unit_flags">
	<flag name="mixed" flags="dead|size_level"/>
</flag-array>`)

	if ok {
		t.Error("expected failure")
	}
	want := "size=1\n" +
		"1\\name=\"mixed\"\n" +
		"1\\value=0x00000002\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestEvalFlagArrayUnknownFlag(t *testing.T) {
	ctx := newTestContext(t, "v0.47.05 linux64")

	got, ok := evalFlagArray(t, ctx, `
<flag-array name="goals" bitfield="unit_flags">
	<flag name="mixed" flags="ghostly|marauder"/>
</flag-array>`)

	if ok {
		t.Error("expected failure")
	}
	want := "size=1\n" +
		"1\\name=\"mixed\"\n" +
		"1\\value=0x00000004\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestEvalFlagArrayInvalidChild(t *testing.T) {
	ctx := newTestContext(t, "v0.47.05 linux64")

	got, ok := evalFlagArray(t, ctx, `
<flag-array name="goals" bitfield="unit_flags">
	<banner name="nope"/>
	<flag name="swap" flags="can_swap"/>
</flag-array>`)

	if ok {
		t.Error("expected failure")
	}
	want := "size=1\n" +
		"1\\name=\"swap\"\n" +
		"1\\value=0x00000001\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}
