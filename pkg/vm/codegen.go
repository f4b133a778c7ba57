package vm

import "fmt"

// ----------------------------------------------------------------------------
// Code Generator

// CodeGenerator renders a 'vm.Program' back into VM source text, one line of output per
// 'vm.Operation' encountered. It holds no state beyond the program itself: every operation
// is rendered independently of the ones around it, so nothing here needs a scope table or
// a running counter (unlike 'pkg/jack's Lowerer, which has to track both).
type CodeGenerator struct {
	program Program
}

// NewCodeGenerator wraps 'p' in a CodeGenerator ready to 'Generate()' its VM source text.
func NewCodeGenerator(p Program) CodeGenerator {
	return CodeGenerator{program: p}
}

// Generate walks every module of the program and renders each of its operations to a line
// of VM source, keyed by module name so the caller can write one file per translation unit.
func (cg *CodeGenerator) Generate() (map[string][]string, error) {
	out := make(map[string][]string, len(cg.program))

	for name, module := range cg.program {
		lines := make([]string, 0, len(module))

		for _, op := range module {
			line, err := cg.render(op)
			if err != nil {
				return nil, fmt.Errorf("module '%s': %w", name, err)
			}
			lines = append(lines, line)
		}

		out[name] = lines
	}

	return out, nil
}

// render dispatches a single operation to its dedicated Generate* method based on its
// concrete type.
func (cg *CodeGenerator) render(op Operation) (string, error) {
	switch op := op.(type) {
	case MemoryOp:
		return cg.GenerateMemoryOp(op)
	case ArithmeticOp:
		return cg.GenerateArithmeticOp(op)
	case LabelDecl:
		return cg.GenerateLabelDecl(op)
	case GotoOp:
		return cg.GenerateGotoOp(op)
	case FuncDecl:
		return cg.GenerateFuncDecl(op)
	case FuncCallOp:
		return cg.GenerateFuncCallOp(op)
	case ReturnOp:
		return cg.GenerateReturnOp(op)
	default:
		return "", fmt.Errorf("unrecognized operation %T", op)
	}
}

// GenerateMemoryOp renders a 'push'/'pop' against one of the eight memory segments.
func (cg *CodeGenerator) GenerateMemoryOp(op MemoryOp) (string, error) {
	switch {
	case op.Segment == Pointer && op.Offset > 1:
		return "", fmt.Errorf("'pointer' segment only addresses offsets 0 or 1, got %d", op.Offset)
	case op.Segment == Temp && op.Offset > 7:
		return "", fmt.Errorf("'temp' segment only addresses offsets 0..7, got %d", op.Offset)
	}

	return fmt.Sprintf("%s %s %d", op.Operation, op.Segment, op.Offset), nil
}

// GenerateArithmeticOp renders a zero-operand arithmetic/logical/comparison command.
func (cg *CodeGenerator) GenerateArithmeticOp(op ArithmeticOp) (string, error) {
	return string(op.Operation), nil
}

// GenerateLabelDecl renders a 'label' declaration.
func (cg *CodeGenerator) GenerateLabelDecl(op LabelDecl) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("label declaration requires a non-empty name")
	}
	return fmt.Sprintf("label %s", op.Name), nil
}

// GenerateGotoOp renders an unconditional or conditional jump to a label.
func (cg *CodeGenerator) GenerateGotoOp(op GotoOp) (string, error) {
	if op.Label == "" {
		return "", fmt.Errorf("jump operation requires a non-empty target label")
	}
	return fmt.Sprintf("%s %s", op.Jump, op.Label), nil
}

// GenerateFuncDecl renders a 'function' declaration, including its local-variable count.
func (cg *CodeGenerator) GenerateFuncDecl(op FuncDecl) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("function declaration requires a non-empty name")
	}
	return fmt.Sprintf("function %s %d", op.Name, op.NLocal), nil
}

// GenerateFuncCallOp renders a 'call' to a function by name and argument count.
func (cg *CodeGenerator) GenerateFuncCallOp(op FuncCallOp) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("function call requires a non-empty target name")
	}
	return fmt.Sprintf("call %s %d", op.Name, op.NArgs), nil
}

// GenerateReturnOp renders a 'return' statement. It carries no fields to validate.
func (cg *CodeGenerator) GenerateReturnOp(op ReturnOp) (string, error) {
	return "return", nil
}
