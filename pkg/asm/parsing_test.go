package asm_test

import (
	"strings"
	"testing"

	"github.com/hmny-labs/n2t-toolchain/pkg/asm"
)

func parse(t *testing.T, source string) asm.Program {
	t.Helper()

	parser := asm.NewParser(strings.NewReader(source))
	program, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return program
}

func TestParserCInstructions(t *testing.T) {
	t.Run("dest only", func(t *testing.T) {
		program := parse(t, "D=A\n")
		if len(program) != 1 {
			t.Fatalf("expected 1 instruction, got %d", len(program))
		}
		got, ok := program[0].(asm.CInstruction)
		if !ok {
			t.Fatalf("expected CInstruction, got %T", program[0])
		}
		if got != (asm.CInstruction{Dest: "D", Comp: "A"}) {
			t.Fatalf("unexpected instruction: %+v", got)
		}
	})

	t.Run("jump only", func(t *testing.T) {
		program := parse(t, "0;JMP\n")
		got := program[0].(asm.CInstruction)
		if got != (asm.CInstruction{Comp: "0", Jump: "JMP"}) {
			t.Fatalf("unexpected instruction: %+v", got)
		}
	})

	t.Run("dest, comp and jump together", func(t *testing.T) {
		// This is the shape a naive parser drops the 'jump' clause for whenever it resolves
		// the 'dest' clause first: both must survive into the same CInstruction.
		program := parse(t, "D=D-1;JGT\n")
		if len(program) != 1 {
			t.Fatalf("expected 1 instruction, got %d", len(program))
		}
		got, ok := program[0].(asm.CInstruction)
		if !ok {
			t.Fatalf("expected CInstruction, got %T", program[0])
		}
		want := asm.CInstruction{Dest: "D", Comp: "D-1", Jump: "JGT"}
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("multi-register dest with jump", func(t *testing.T) {
		program := parse(t, "AMD=M+1;JNE\n")
		got := program[0].(asm.CInstruction)
		want := asm.CInstruction{Dest: "AMD", Comp: "M+1", Jump: "JNE"}
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})
}

func TestParserAInstructionsAndLabels(t *testing.T) {
	program := parse(t, "(LOOP)\n@LOOP\n@17\n")

	if len(program) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(program))
	}
	if label, ok := program[0].(asm.LabelDecl); !ok || label.Name != "LOOP" {
		t.Fatalf("expected LabelDecl{Name: LOOP}, got %+v", program[0])
	}
	if a, ok := program[1].(asm.AInstruction); !ok || a.Location != "LOOP" {
		t.Fatalf("expected AInstruction{Location: LOOP}, got %+v", program[1])
	}
	if a, ok := program[2].(asm.AInstruction); !ok || a.Location != "17" {
		t.Fatalf("expected AInstruction{Location: 17}, got %+v", program[2])
	}
}

func TestParserSkipsComments(t *testing.T) {
	program := parse(t, "// a full line comment\n@1 // trailing comment\n")

	if len(program) != 1 {
		t.Fatalf("expected comments to be dropped, got %d instructions", len(program))
	}
	if a, ok := program[0].(asm.AInstruction); !ok || a.Location != "1" {
		t.Fatalf("expected AInstruction{Location: 1}, got %+v", program[0])
	}
}
