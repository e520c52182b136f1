package output

import (
	"bytes"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return NewWithWriters(stdout, stderr, false), stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w.Out() == nil || w.Err() == nil {
		t.Error("New() left a writer nil")
	}
}

func TestWriter_Basic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		call       func(w *Writer)
		wantStdout string
		wantStderr string
	}{
		{"Println", func(w *Writer) { w.Println("hello %s", "world") }, "hello world\n", ""},
		{"Errorln", func(w *Writer) { w.Errorln("error %d", 42) }, "", "error 42\n"},
		{"Info", func(w *Writer) { w.Info("n=%d", 3) }, "n=3\n", ""},
		{"Success", func(w *Writer) { w.Success("ok") }, "ok\n", ""},
		{"Warning", func(w *Writer) { w.Warning("careful %s", "now") }, "", "warning: careful now\n"},
		{"ErrorPrefix", func(w *Writer) { w.ErrorPrefix("boom") }, "", "specoracle: boom\n"},
		{"Section", func(w *Writer) { w.Section("Suites") }, "\n=== Suites ===\n", ""},
		{"List", func(w *Writer) { w.List([]string{"a", "b"}) }, "  - a\n  - b\n", ""},
		{"CheckSummary passed", func(w *Writer) { w.CheckSummary(2, 0) }, "2 of 2 checked cases passed\n", ""},
		{"CheckSummary failed", func(w *Writer) { w.CheckSummary(3, 1) }, "1 of 3 checked cases failed\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, stdout, stderr := newTestWriter()
			tt.call(w)
			if got := stdout.String(); got != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", got, tt.wantStdout)
			}
			if got := stderr.String(); got != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", got, tt.wantStderr)
			}
		})
	}
}

func TestWriter_QuietSuppressesInfo(t *testing.T) {
	t.Parallel()
	w, stdout, _ := newTestWriter()
	w.SetQuiet(true)

	w.Info("hidden")
	w.Section("hidden")
	w.CasePassed("a.mzn[0]", "")
	w.CaseFailed("b.mzn[1]", []string{"status"})
	w.CheckSummary(1, 0)
	w.CheckSummary(2, 1)

	if got, want := stdout.String(), "FAIL b.mzn[1]\n    status\n1 of 2 checked cases failed\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestWriter_Cases(t *testing.T) {
	t.Parallel()
	w, stdout, _ := newTestWriter()

	w.CasePassed("a.mzn[0]", "expected[1]")
	w.CasePassed("a.mzn[1]", "")
	w.CaseFailed("a.mzn[2]", []string{"expected[0]: status", "expected[1]: text differs:\n- a\n+ b"})

	want := "PASS a.mzn[0] expected[1]\n" +
		"PASS a.mzn[1]\n" +
		"FAIL a.mzn[2]\n" +
		"    expected[0]: status\n" +
		"    expected[1]: text differs:\n" +
		"    - a\n" +
		"    + b\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout =\n%s\nwant\n%s", got, want)
	}
}

func TestWriter_Table(t *testing.T) {
	t.Parallel()
	w, stdout, _ := newTestWriter()

	w.Table([]string{"SUITE", "CASES"}, [][]string{
		{"models", "12"},
		{"x", "3", "ignored"},
	})

	want := "SUITE   CASES\n" +
		"------  -----\n" +
		"models  12\n" +
		"x       3\n"
	if got := stdout.String(); got != want {
		t.Errorf("Table() =\n%q\nwant\n%q", got, want)
	}
}

func TestWriter_Color(t *testing.T) {
	t.Parallel()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	w := NewWithWriters(stdout, stderr, true)

	w.CasePassed("a", "")
	w.ErrorPrefix("x")

	if !strings.Contains(stdout.String(), green+"PASS"+reset) {
		t.Errorf("stdout = %q, want colored PASS", stdout.String())
	}
	if !strings.Contains(stderr.String(), red+"specoracle:"+reset) {
		t.Errorf("stderr = %q, want colored prefix", stderr.String())
	}
}
