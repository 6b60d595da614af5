package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/offsetlab/layoutkit/report"
	"github.com/offsetlab/layoutkit/typedb"
)

const testDefs = `
<data-definition>
	<compound name="world">
		<field name="year" type="int32_t"/>
	</compound>
</data-definition>`

const testSyms = `
<symbol-tables>
	<symbol-table name="v0.47.05 linux64" id="0xdeadbeef"/>
</symbol-tables>`

func testContext(t *testing.T) *report.Context {
	t.Helper()
	db := typedb.New()
	if err := db.Read(strings.NewReader(testDefs)); err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if err := db.Read(strings.NewReader(testSyms)); err != nil {
		t.Fatalf("symbols: %v", err)
	}
	ctx, err := report.NewContext(db, "v0.47.05 linux64")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return ctx
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestDumpReport(t *testing.T) {
	ctx := testContext(t)
	path := writeScript(t, `
<layout>
	<section name="offsets">
		<size name="world_size" type="world"/>
	</section>
</layout>`)

	var buf bytes.Buffer
	ok, err := dumpReport(ctx, path, &buf)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !ok {
		t.Error("expected success")
	}

	want := "[info]\n" +
		"checksum=0xdeadbeef\n" +
		"version_name=v0.47.05 linux64\n" +
		"complete=true\n" +
		"\n" +
		"[offsets]\n" +
		"world_size=0x0004\n" +
		"\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestDumpReportMalformedScript(t *testing.T) {
	ctx := testContext(t)
	path := writeScript(t, `<layout><section`)

	var buf bytes.Buffer
	if _, err := dumpReport(ctx, path, &buf); err == nil {
		t.Fatal("expected parse error")
	}

	// version identification is already out when the parse fails
	want := "[info]\n" +
		"checksum=0xdeadbeef\n" +
		"version_name=v0.47.05 linux64\n" +
		"complete=true\n" +
		"\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
