package hack

import (
	"fmt"
	"strconv"
)

// ----------------------------------------------------------------------------
// Translation tables

// BuiltInTable maps every reserved Hack name to the RAM address it always refers to:
// the VM-convention segment pointers (SP/LCL/ARG/THIS/THAT), the sixteen general-purpose
// registers, and the two memory-mapped I/O locations.
var BuiltInTable = map[string]uint16{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

// CompTable maps every valid 'comp' mnemonic to its 7-bit ALU control code (the c1..c6
// bits plus the 'a' bit selecting A vs M as the second operand).
var CompTable = map[string]uint16{
	"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
	"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
	"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
	"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
	"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
	"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
	"D+A": 0b0000010, "D+M": 0b1000010,
	"D-A": 0b0010011, "D-M": 0b1010011,
	"A-D": 0b0000111, "M-D": 0b1000111,
	"D&A": 0b0000000, "D&M": 0b1000000,
	"D|A": 0b0010101, "D|M": 0b1010101,
}

// DestTable maps every valid 'dest' mnemonic (including the empty one, for a
// jump-only instruction) to its 3-bit register-select code.
var DestTable = map[string]uint16{
	"": 0b000, "M": 0b001, "D": 0b010, "A": 0b100,
	"MD": 0b011, "AM": 0b101, "AD": 0b110, "AMD": 0b111,
}

// JumpTable maps every valid 'jump' mnemonic (including the empty one, for a
// dest-only instruction) to its 3-bit condition code.
var JumpTable = map[string]uint16{
	"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
	"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
}

// ----------------------------------------------------------------------------
// Code Generator

// CodeGenerator is the final stage of the assembler: it turns a resolved Program (every
// label already bound to an address in the SymbolTable, courtesy of the lowering phase) into
// the sixteen-bit binary strings that make up a '.hack' file, one per line.
type CodeGenerator struct {
	Program     Program
	SymbolTable SymbolTable
}

// NewCodeGenerator builds a CodeGenerator for 'p', resolving any Label-kind
// AInstruction against 'st'. A nil 'st' is treated as an empty table.
func NewCodeGenerator(p Program, st SymbolTable) CodeGenerator {
	if st == nil {
		st = SymbolTable{}
	}
	return CodeGenerator{Program: p, SymbolTable: st}
}

// Generate translates every instruction in the Program to its binary line, in order,
// stopping at the first instruction that fails to translate.
func (cg *CodeGenerator) Generate() ([]string, error) {
	lines := make([]string, 0, len(cg.Program))

	for _, instruction := range cg.Program {
		var line string
		var err error

		switch inst := instruction.(type) {
		case AInstruction:
			line, err = cg.TranslateAInst(inst)
		case CInstruction:
			line, err = cg.TranslateCInst(inst)
		default:
			err = fmt.Errorf("unrecognized instruction type %T", instruction)
		}

		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// TranslateAInst resolves 'inst's location (a raw address, a user label, or a built-in
// name — whichever LocType says it is) and renders it as a 16-bit binary string with the
// leading opcode bit fixed at zero.
func (cg *CodeGenerator) TranslateAInst(inst AInstruction) (string, error) {
	var address uint16
	var found bool

	switch inst.LocType {
	case Raw:
		num, err := strconv.ParseInt(inst.LocName, 10, 16)
		address, found = uint16(num), err == nil
	case Label:
		// By the time a Program reaches the code generator, variable allocation has
		// already run during lowering, so every Label here is expected to resolve.
		address, found = cg.SymbolTable[inst.LocName]
	case BuiltIn:
		address, found = BuiltInTable[inst.LocName]
	}

	if !found {
		return "", fmt.Errorf("cannot resolve address for location '%s'", inst.LocName)
	}
	if address >= MaxAddressableMemory {
		return "", fmt.Errorf("location '%s' resolved to an out-of-bounds address %d", inst.LocName, address)
	}

	return fmt.Sprintf("%016b", address), nil
}

// TranslateCInst assembles 'inst's three bit-fields (comp, dest, jump) into the
// fixed '111' + comp[7] + dest[3] + jump[3] layout of a C-instruction word. 'Dest' and
// 'Jump' are independently optional on the instruction itself, but that's transparent
// here: DestTable and JumpTable both map the empty mnemonic to code 0b000, so an absent
// clause contributes nothing to the result regardless of which clause (if any) is absent.
func (cg *CodeGenerator) TranslateCInst(inst CInstruction) (string, error) {
	command := uint16(0b111 << 13)

	comp, found := CompTable[inst.Comp]
	if !found {
		return "", fmt.Errorf("unknown 'comp' opcode '%s'", inst.Comp)
	}
	command |= comp << 6

	dest, found := DestTable[inst.Dest]
	if !found {
		return "", fmt.Errorf("unknown 'dest' opcode '%s'", inst.Dest)
	}
	command |= dest << 3

	jump, found := JumpTable[inst.Jump]
	if !found {
		return "", fmt.Errorf("unknown 'jump' opcode '%s'", inst.Jump)
	}
	command |= jump

	return fmt.Sprintf("%016b", command), nil
}
