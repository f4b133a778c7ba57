package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hmny-labs/n2t-toolchain/pkg/hack"
)

// ----------------------------------------------------------------------------
// Code Generator

// CodeGenerator renders a Program back to Hack assembly source text. It's the mirror
// image of Parser: where Parser turns text into Instruction values, CodeGenerator turns
// Instruction values back into text, used to materialize the '.clean.asm' intermediate
// file (the parsed AST re-serialized before lowering and the binary encoding pass in pkg/hack).
type CodeGenerator struct {
	program Program
}

// NewCodeGenerator wraps 'p' in a CodeGenerator ready to Generate its textual form.
func NewCodeGenerator(p Program) CodeGenerator {
	return CodeGenerator{program: p}
}

// Generate renders every instruction in the wrapped program to its assembly text form,
// one line per instruction, in source order. It stops at the first instruction that
// fails to render and reports which one.
func (cg *CodeGenerator) Generate() ([]string, error) {
	lines := make([]string, 0, len(cg.program))

	for i, statement := range cg.program {
		line, err := cg.render(statement)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// render dispatches a single Instruction to its matching Generate* method.
func (cg *CodeGenerator) render(statement Instruction) (string, error) {
	switch stmt := statement.(type) {
	case AInstruction:
		return cg.GenerateAInst(stmt)
	case CInstruction:
		return cg.GenerateCInst(stmt)
	case LabelDecl:
		return cg.GenerateLabelDecl(stmt)
	default:
		return "", fmt.Errorf("unrecognized instruction type %T", statement)
	}
}

// GenerateAInst renders an A-instruction back to its '@location' form. A raw numeric
// location must fit in the 15 bits an A-instruction can address.
func (CodeGenerator) GenerateAInst(stmt AInstruction) (string, error) {
	if stmt.Location == "" {
		return "", errors.New("A instruction is missing its location")
	}
	if num, err := strconv.ParseUint(stmt.Location, 10, 64); err == nil && num >= uint64(hack.MaxAddressableMemory) {
		return "", fmt.Errorf("A instruction address '%s' is out of bounds", stmt.Location)
	}

	return "@" + stmt.Location, nil
}

// GenerateCInst renders a C-instruction back to its 'dest=comp;jump' form. 'Comp' is
// mandatory; 'Dest' and 'Jump' are independently optional and both may be present at
// once (e.g. 'D=D-1;JGT'), so each clause is appended on its own rather than picking
// one over the other.
func (cg *CodeGenerator) GenerateCInst(stmt CInstruction) (string, error) {
	if stmt.Comp == "" {
		return "", errors.New("C instruction is missing its comp directive")
	}
	if stmt.Dest == "" && stmt.Jump == "" {
		return "", errors.New("C instruction needs at least a dest or a jump directive")
	}

	var b strings.Builder
	if stmt.Dest != "" {
		b.WriteString(stmt.Dest)
		b.WriteByte('=')
	}
	b.WriteString(stmt.Comp)
	if stmt.Jump != "" {
		b.WriteByte(';')
		b.WriteString(stmt.Jump)
	}

	return b.String(), nil
}

// GenerateLabelDecl renders a label declaration back to its '(name)' form. Built-in
// names (registers, I/O locations) can never be redeclared as user labels.
func (cg *CodeGenerator) GenerateLabelDecl(stmt LabelDecl) (string, error) {
	if stmt.Name == "" {
		return "", errors.New("label declaration is missing its name")
	}
	if _, found := hack.BuiltInTable[stmt.Name]; found {
		return "", fmt.Errorf("'%s' is a built-in name and cannot be redeclared as a label", stmt.Name)
	}

	return "(" + stmt.Name + ")", nil
}
