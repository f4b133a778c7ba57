package asm

// Package asm models the Hack assembly language: three instruction shapes (labels,
// A-instructions, C-instructions) that together form a Program. The parser in this
// package turns source text into a Program, the lowerer resolves every symbol to an
// address, and the code generator turns a Program back into text.

// Instruction is the umbrella type for anything that can appear as one line of a
// Program: a LabelDecl, an AInstruction or a CInstruction.
type Instruction interface{}

// Program is the parsed, in-order form of an assembly source file.
type Program []Instruction

// ----------------------------------------------------------------------------
// Label declarations

// LabelDecl marks a jump target: '(NAME)' binds 'NAME' to whatever instruction address
// immediately follows it. It carries no address itself — that resolution happens in the
// lowering phase, which builds the symbol table every AInstruction reference is checked
// against.
type LabelDecl struct {
	Name string
}

// ----------------------------------------------------------------------------
// A-instructions

// AInstruction loads a value into the A register: '@17' loads a raw address, '@LOOP'
// loads whatever address 'LOOP' resolves to (a user label, a variable, or one of the
// Hack platform's built-in names). Which of the three it is isn't decided until lowering.
type AInstruction struct {
	Location string
}

// ----------------------------------------------------------------------------
// C-instructions

// CInstruction is the Hack computer's only instruction for computation: 'Comp' selects
// what the ALU computes, 'Dest' (optional) selects which registers receive the result,
// and 'Jump' (optional) selects under what condition control transfers elsewhere. Both
// Dest and Jump may be set on the same instruction at once.
type CInstruction struct {
	Comp string
	Dest string
	Jump string
}
