package vm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hmny-labs/n2t-toolchain/pkg/asm"
)

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one or more already-parsed translation units) and produces
// its 'asm.Program' counterpart, implementing the full Hack calling convention: memory segment
// access, arithmetic/logical/comparison ops, function-scoped branching and the function
// call/return protocol (saving/restoring LCL, ARG, THIS, THAT across calls).
//
// Modules are translated in sorted-by-name order so that, given the same input, the emitted
// assembly is always byte-identical (map iteration order in Go is intentionally randomized).
type Lowerer struct {
	program Program

	currentModule   string         // Name of the translation unit currently being lowered (for 'static')
	currentFunction string         // Name of the function currently being lowered (for label scoping)
	retCounter      map[string]int // Per-function monotonic counter used to mint unique return labels
	cmpCounter      int            // Monotonic counter used to mint unique comparison labels
}

// Initializes and returns to the caller a brand new 'Lowerer' struct for the given Program.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p, retCounter: map[string]int{}}
}

// Segment pointer resolution for the 4 "pointer indirect" memory segments.
var segmentPointer = map[SegmentType]string{
	Local: "LCL", Argument: "ARG", This: "THIS", That: "THAT",
}

// Resolution for 'pointer 0'/'pointer 1', which alias the THIS/THAT segment pointers themselves.
var pointerAlias = map[uint16]string{0: "THIS", 1: "THAT"}

// Triggers the lowering process across every module of the Program, in deterministic order.
func (l *Lowerer) Lower() (asm.Program, error) {
	program := asm.Program{}

	names := make([]string, 0, len(l.program))
	for name := range l.program {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l.currentModule = strings.TrimSuffix(name, ".vm")
		l.currentFunction = ""

		for _, operation := range l.program[name] {
			var lowered []asm.Instruction
			var err error

			switch tOperation := operation.(type) {
			case MemoryOp:
				lowered, err = l.translateMemoryOp(tOperation)
			case ArithmeticOp:
				lowered, err = l.translateArithmeticOp(tOperation)
			case LabelDecl:
				lowered, err = l.translateLabelDecl(tOperation)
			case GotoOp:
				lowered, err = l.translateGotoOp(tOperation)
			case FuncDecl:
				lowered, err = l.translateFuncDecl(tOperation)
			case FuncCallOp:
				lowered, err = l.translateFuncCallOp(tOperation)
			case ReturnOp:
				lowered, err = l.translateReturnOp()
			default:
				err = fmt.Errorf("unrecognized operation '%T'", operation)
			}

			if err != nil {
				return nil, fmt.Errorf("module '%s': %w", name, err)
			}
			program = append(program, lowered...)
		}
	}

	return program, nil
}

// Bootstrap returns the preamble every Hack program needs to run: it sets the Stack Pointer
// to its base location (256) then calls 'Sys.init', using it as the enclosing function context
// for return-label minting (mirroring what a directory-mode translation unit would do).
func (l *Lowerer) Bootstrap() (asm.Program, error) {
	if l.retCounter == nil {
		l.retCounter = map[string]int{}
	}
	l.currentFunction = "Sys.init"

	call, err := l.translateFuncCallOp(FuncCallOp{Name: "Sys.init", NArgs: 0})
	if err != nil {
		return nil, err
	}

	preamble := []asm.Instruction{
		asm.AInstruction{Location: "256"},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}
	return append(preamble, call...), nil
}

// ----------------------------------------------------------------------------
// Shared snippets

// pushD appends the instructions that push whatever value is currently in the D register
// onto the top of the stack, advancing the Stack Pointer.
func pushD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"},
	}
}

// popD appends the instructions that pop the stack's top value into the D register.
func popD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M-1"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}
}

// ----------------------------------------------------------------------------
// Memory Op

func (l *Lowerer) translateMemoryOp(op MemoryOp) ([]asm.Instruction, error) {
	if op.Operation == Push {
		return l.translatePush(op)
	}
	return l.translatePop(op)
}

func (l *Lowerer) translatePush(op MemoryOp) ([]asm.Instruction, error) {
	var setD []asm.Instruction

	switch op.Segment {
	case Constant:
		setD = []asm.Instruction{
			asm.AInstruction{Location: strconv.Itoa(int(op.Offset))},
			asm.CInstruction{Dest: "D", Comp: "A"},
		}

	case Local, Argument, This, That:
		setD = []asm.Instruction{
			asm.AInstruction{Location: strconv.Itoa(int(op.Offset))},
			asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: segmentPointer[op.Segment]},
			asm.CInstruction{Dest: "D", Comp: "D+M"},
			asm.CInstruction{Dest: "A", Comp: "D"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}

	case Static:
		setD = []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprintf("%s.%d", l.currentModule, op.Offset)},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}

	case Pointer:
		name, found := pointerAlias[op.Offset]
		if !found {
			return nil, fmt.Errorf("invalid 'pointer' offset, got %d", op.Offset)
		}
		setD = []asm.Instruction{
			asm.AInstruction{Location: name},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}

	case Temp:
		if op.Offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", op.Offset)
		}
		setD = []asm.Instruction{
			asm.AInstruction{Location: strconv.Itoa(int(op.Offset))},
			asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: "5"},
			asm.CInstruction{Dest: "A", Comp: "D+A"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}

	default:
		return nil, fmt.Errorf("invalid segment '%s'", op.Segment)
	}

	return append(setD, pushD()...), nil
}

func (l *Lowerer) translatePop(op MemoryOp) ([]asm.Instruction, error) {
	switch op.Segment {
	case Local, Argument, This, That:
		setR13 := []asm.Instruction{
			asm.AInstruction{Location: strconv.Itoa(int(op.Offset))},
			asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: segmentPointer[op.Segment]},
			asm.CInstruction{Dest: "D", Comp: "D+M"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		writeBack := []asm.Instruction{
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		out := append(setR13, popD()...)
		return append(out, writeBack...), nil

	case Static:
		out := popD()
		return append(out, asm.AInstruction{Location: fmt.Sprintf("%s.%d", l.currentModule, op.Offset)},
			asm.CInstruction{Dest: "M", Comp: "D"}), nil

	case Pointer:
		name, found := pointerAlias[op.Offset]
		if !found {
			return nil, fmt.Errorf("invalid 'pointer' offset, got %d", op.Offset)
		}
		out := popD()
		return append(out, asm.AInstruction{Location: name}, asm.CInstruction{Dest: "M", Comp: "D"}), nil

	case Temp:
		if op.Offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", op.Offset)
		}
		setR13 := []asm.Instruction{
			asm.AInstruction{Location: strconv.Itoa(int(op.Offset))},
			asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: "5"},
			asm.CInstruction{Dest: "D", Comp: "D+A"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		writeBack := []asm.Instruction{
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		out := append(setR13, popD()...)
		return append(out, writeBack...), nil

	case Constant:
		return nil, fmt.Errorf("unable to 'pop' into the read-only 'constant' segment")

	default:
		return nil, fmt.Errorf("invalid segment '%s'", op.Segment)
	}
}

// ----------------------------------------------------------------------------
// Arithmetic Op

var binaryComp = map[ArithOpType]string{Add: "D+M", Sub: "M-D", And: "D&M", Or: "D|M"}
var unaryComp = map[ArithOpType]string{Neg: "-M", Not: "!M"}
var jumpForCmp = map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}

func (l *Lowerer) translateArithmeticOp(op ArithmeticOp) ([]asm.Instruction, error) {
	if comp, ok := binaryComp[op.Operation]; ok {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M-1"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil
	}

	if comp, ok := unaryComp[op.Operation]; ok {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil
	}

	if jump, ok := jumpForCmp[op.Operation]; ok {
		l.cmpCounter++
		label := fmt.Sprintf("CMP%d", l.cmpCounter)
		trueLabel, endLabel := l.qualifyLabel(label+"_TRUE"), l.qualifyLabel(label+"_END")

		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M-1"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "D", Comp: "M-D"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: trueLabel},
			asm.CInstruction{Comp: "D", Jump: jump},
			asm.AInstruction{Location: endLabel},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
			asm.LabelDecl{Name: trueLabel},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "-1"},
			asm.LabelDecl{Name: endLabel},
		}, nil
	}

	return nil, fmt.Errorf("unrecognized arithmetic operation '%s'", op.Operation)
}

// ----------------------------------------------------------------------------
// Branching Ops

// qualifyLabel scopes a bare label to the function currently being lowered, so the same bare
// name can be reused across functions without colliding (per the VM spec's function-scoped labels).
func (l *Lowerer) qualifyLabel(name string) string {
	if l.currentFunction == "" {
		return name
	}
	return fmt.Sprintf("%s$%s", l.currentFunction, name)
}

func (l *Lowerer) translateLabelDecl(op LabelDecl) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty label declaration")
	}
	return []asm.Instruction{asm.LabelDecl{Name: l.qualifyLabel(op.Name)}}, nil
}

func (l *Lowerer) translateGotoOp(op GotoOp) ([]asm.Instruction, error) {
	if op.Label == "" {
		return nil, fmt.Errorf("unable to produce empty jump label")
	}
	label := l.qualifyLabel(op.Label)

	if op.Jump == Unconditional {
		return []asm.Instruction{
			asm.AInstruction{Location: label},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}, nil
	}

	out := popD()
	return append(out, asm.AInstruction{Location: label}, asm.CInstruction{Comp: "D", Jump: "JNE"}), nil
}

// ----------------------------------------------------------------------------
// Function Ops

func (l *Lowerer) translateFuncDecl(op FuncDecl) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty function declaration")
	}

	l.currentFunction = op.Name
	if l.retCounter == nil {
		l.retCounter = map[string]int{}
	}

	program := []asm.Instruction{asm.LabelDecl{Name: op.Name}}
	for i := uint16(0); i < op.NLocal; i++ {
		program = append(program,
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M+1"},
		)
	}
	return program, nil
}

func (l *Lowerer) translateFuncCallOp(op FuncCallOp) ([]asm.Instruction, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("unable to produce empty function call")
	}
	if l.retCounter == nil {
		l.retCounter = map[string]int{}
	}

	retLabel := fmt.Sprintf("%s$ret.%d", l.currentFunction, l.retCounter[l.currentFunction])
	l.retCounter[l.currentFunction]++

	program := []asm.Instruction{asm.AInstruction{Location: retLabel}, asm.CInstruction{Dest: "D", Comp: "A"}}
	program = append(program, pushD()...)

	for _, saved := range []string{"LCL", "ARG", "THIS", "THAT"} {
		program = append(program, asm.AInstruction{Location: saved}, asm.CInstruction{Dest: "D", Comp: "M"})
		program = append(program, pushD()...)
	}

	program = append(program,
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: strconv.Itoa(int(op.NArgs) + 5)},
		asm.CInstruction{Dest: "D", Comp: "D-A"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: op.Name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},

		asm.LabelDecl{Name: retLabel},
	)

	return program, nil
}

func (l *Lowerer) translateReturnOp() ([]asm.Instruction, error) {
	program := []asm.Instruction{
		// R13 = endFrame (= LCL)
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		// R14 = returnAddr (= *(endFrame - 5)), saved before ARG[0] gets overwritten below
		asm.AInstruction{Location: "5"},
		asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}

	program = append(program, popD()...)
	program = append(program,
		// *ARG = return value, SP = ARG + 1
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	)

	for _, restored := range []string{"THAT", "THIS", "ARG", "LCL"} {
		program = append(program,
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "M-1"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: restored},
			asm.CInstruction{Dest: "M", Comp: "D"},
		)
	}

	program = append(program,
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	)

	return program, nil
}
