package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutput_PlainWhenNotColorized(t *testing.T) {
	var out, errOut bytes.Buffer
	o := NewWithWriters(&out, &errOut, false)

	o.Successf("added %d items", 2)
	if got := out.String(); got != "added 2 items\n" {
		t.Fatalf("stdout = %q", got)
	}

	o.Errorf("boom")
	if got := errOut.String(); got != "boom\n" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestOutput_ColorizedWrapsInEscapes(t *testing.T) {
	var out bytes.Buffer
	o := NewWithWriters(&out, &out, true)

	o.Successf("done")
	got := out.String()
	if !strings.HasPrefix(got, colorGreen) {
		t.Fatalf("missing color prefix in %q", got)
	}
	if !strings.Contains(got, colorReset) {
		t.Fatalf("missing reset in %q", got)
	}
}

func TestOutput_ErrorGoesToErrorWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	o := NewWithWriters(&out, &errOut, false)

	o.Errorf("nope")
	if out.Len() != 0 {
		t.Fatalf("stdout should be empty, got %q", out.String())
	}
	if errOut.String() != "nope\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
