package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeVMFixture(t *testing.T, dir string, name string, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("error writing '%s' fixture: %s", name, err)
	}
	return path
}

func TestVMTranslatorSingleFile(t *testing.T) {
	dir := t.TempDir()
	source := strings.Join([]string{
		"push constant 7",
		"push constant 8",
		"add",
	}, "\n")
	input := writeVMFixture(t, dir, "SimpleAdd.vm", source)

	status := Handler([]string{input}, nil)
	if status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got: %d", status)
	}

	outputPath := strings.TrimSuffix(input, ".vm") + ".asm"
	compiled, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("error reading compiled output: %s", err)
	}

	// Single-file mode never prepends the bootstrap sequence, since the file is assumed
	// to be elaborated alongside other modules later on.
	if strings.Contains(string(compiled), "@Sys.init") {
		t.Fatalf("single-file mode must not prepend the bootstrap sequence, got:\n%s", compiled)
	}
	if !strings.Contains(string(compiled), "@SP") {
		t.Fatalf("expected generated assembly to reference the stack pointer, got:\n%s", compiled)
	}
}

func TestVMTranslatorDirectoryBootstraps(t *testing.T) {
	dir := t.TempDir()
	writeVMFixture(t, dir, "Main.vm", strings.Join([]string{
		"function Main.main 0",
		"call Sys.init 0",
		"return",
	}, "\n"))
	writeVMFixture(t, dir, "Sys.vm", strings.Join([]string{
		"function Sys.init 0",
		"push constant 0",
		"return",
	}, "\n"))

	status := Handler([]string{dir}, nil)
	if status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got: %d", status)
	}

	outputPath := filepath.Join(dir, filepath.Base(dir)+".asm")
	compiled, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("error reading compiled output: %s", err)
	}

	// Directory mode assumes a complete, runnable program and prepends the bootstrap
	// sequence, which sets SP to 256 and jumps to 'Sys.init'.
	if !strings.Contains(string(compiled), "@Sys.init") {
		t.Fatalf("expected bootstrap sequence to jump to 'Sys.init', got:\n%s", compiled)
	}
	if !strings.Contains(string(compiled), "@256") {
		t.Fatalf("expected bootstrap sequence to set the stack pointer to 256, got:\n%s", compiled)
	}
}

func TestVMTranslatorMissingTarget(t *testing.T) {
	if status := Handler(nil, nil); status == 0 {
		t.Fatalf("expected a non-zero exit status when no target is given")
	}
}

func TestVMTranslatorNoSourcesInDirectory(t *testing.T) {
	dir := t.TempDir()
	if status := Handler([]string{dir}, nil); status == 0 {
		t.Fatalf("expected a non-zero exit status for a directory with no '.vm' files")
	}
}
