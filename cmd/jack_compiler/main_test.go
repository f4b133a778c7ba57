package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleClass = `
class Main {
	function void main() {
		var int sum;
		let sum = 1 + 2;
		do Output.printInt(sum);
		return;
	}
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	if err := os.WriteFile(path, []byte(sampleClass), 0644); err != nil {
		t.Fatalf("error writing sample fixture: %s", err)
	}
	return path
}

func TestJackCompilerTokenizeMode(t *testing.T) {
	source := writeSample(t)

	status := Handler([]string{source}, map[string]string{"m": "t"})
	if status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got: %d", status)
	}

	outPath := strings.TrimSuffix(source, ".jack") + "T.xml"
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("error reading generated token XML: %s", err)
	}
	if !strings.HasPrefix(string(content), "<tokens>") {
		t.Fatalf("expected token XML to start with '<tokens>', got: %s", content)
	}
	if !strings.Contains(string(content), "<keyword> class </keyword>") {
		t.Fatalf("expected token XML to contain the 'class' keyword token, got: %s", content)
	}
}

func TestJackCompilerParseTreeMode(t *testing.T) {
	source := writeSample(t)

	status := Handler([]string{source}, map[string]string{"m": "p"})
	if status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got: %d", status)
	}

	outPath := strings.TrimSuffix(source, ".jack") + "P.xml"
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("error reading generated parse tree XML: %s", err)
	}
	if !strings.HasPrefix(string(content), "<class>") {
		t.Fatalf("expected parse tree XML to start with '<class>', got: %s", content)
	}
}

func TestJackCompilerGenerateMode(t *testing.T) {
	source := writeSample(t)

	// 'g' is the default mode, exercised both explicitly and via the implicit empty value.
	for _, mode := range []string{"g", ""} {
		status := Handler([]string{source}, map[string]string{"m": mode})
		if status != 0 {
			t.Fatalf("unexpected exit status code for mode '%s': expected 0 got: %d", mode, status)
		}

		outPath := strings.TrimSuffix(source, ".jack") + ".vm"
		content, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("error reading generated VM code: %s", err)
		}
		if !strings.Contains(string(content), "function Main.main") {
			t.Fatalf("expected generated VM code to declare 'Main.main', got: %s", content)
		}
	}
}

func TestJackCompilerInvalidMode(t *testing.T) {
	source := writeSample(t)

	status := Handler([]string{source}, map[string]string{"m": "x"})
	if status == 0 {
		t.Fatalf("expected a non-zero exit status for an invalid '-m' mode")
	}
}
