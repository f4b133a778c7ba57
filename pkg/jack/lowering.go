package jack

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hmny-labs/n2t-toolchain/pkg/utils"
	"github.com/hmny-labs/n2t-toolchain/pkg/vm"
)

// ----------------------------------------------------------------------------
// Lowerer

// Lowerer walks a jack.Program's AST depth-first and emits its vm.Program equivalent,
// one vm.Operation slice per class/subroutine/statement/expression node visited.
type Lowerer struct {
	program     utils.OrderedMap[string, Class] // classes in a fixed, deterministic order
	scopes      ScopeTable
	nRandomizer uint // next free suffix for minting unique branch labels
}

// NewLowerer prepares 'p' for lowering. Go's built-in map iterates in random order, and
// this Lowerer mints branch labels from a plain incrementing counter, so lowering the
// same program twice in class-map order would produce different label numbers on each
// run. Sorting classes by name once, up front, makes the whole pipeline reproducible:
// the same Jack source always lowers to the same VM text.
func NewLowerer(p Program) Lowerer {
	entries := make([]utils.MapEntry[string, Class], 0, len(p))
	for name, class := range p {
		entries = append(entries, utils.MapEntry[string, Class]{Key: name, Value: class})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Lowerer{program: utils.NewOrderedMapFromList(entries)}
}

// Lower runs the full class-by-class, statement-by-statement traversal and returns the
// resulting vm.Program, one vm.Module per class.
func (l *Lowerer) Lower() (vm.Program, error) {
	if l.program.Size() == 0 {
		return nil, fmt.Errorf("the given 'program' is empty or nil")
	}

	program := vm.Program{}
	for _, entry := range l.program.Entries() {
		ops, err := l.HandleClass(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("error handling lowering of class '%s': %w", entry.Key, err)
		}
		program[entry.Key] = vm.Module(ops)
	}

	return program, nil
}

// HandleClass lowers every field declaration and subroutine of 'class', in declaration
// order, concatenating their emitted operations.
func (l *Lowerer) HandleClass(class Class) ([]vm.Operation, error) {
	l.scopes.static = utils.Stack[Variable]{} // each class has its own static segment
	l.scopes.PushClassScope(class.Name)
	defer l.scopes.PopClassScope()

	var operations []vm.Operation

	for _, entry := range class.Fields.Entries() {
		field := entry.Value
		ops, err := l.HandleVarStmt(VarStmt{Vars: []Variable{field}})
		if err != nil {
			return nil, fmt.Errorf("error handling field '%s' in class '%s': %w", field.Name, class.Name, err)
		}
		operations = append(operations, ops...)
	}

	for _, entry := range class.Subroutines.Entries() {
		subroutine := entry.Value
		ops, err := l.HandleSubroutine(subroutine)
		if err != nil {
			return nil, fmt.Errorf("error handling subroutine '%s' in class '%s': %w", subroutine.Name, class.Name, err)
		}
		operations = append(operations, ops...)
	}

	return operations, nil
}

// HandleSubroutine lowers one Subroutine to a vm.FuncDecl followed by whatever prelude
// its calling convention requires (constructors allocate their object, methods bind
// 'this' from argument 0) and then its lowered statement body.
func (l *Lowerer) HandleSubroutine(subroutine Subroutine) ([]vm.Operation, error) {
	l.scopes.PushSubRoutineScope(subroutine.Name)
	defer l.scopes.PopSubroutineScope()

	// A method receives the target object as an implicit argument 0; reserving the slot
	// here (the name is never looked up, only its position matters) keeps every other
	// argument's index one-past where it would land on a plain function.
	if subroutine.Type == Method {
		l.scopes.RegisterVariable(Variable{Name: "__obj", Type: Parameter, DataType: Object})
	}

	for _, arg := range subroutine.Arguments {
		l.scopes.RegisterVariable(arg)
	}

	fName := l.scopes.GetScope()
	var fBody []vm.Operation
	for _, stmt := range subroutine.Statements {
		ops, err := l.HandleStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("error handling nested statement %T': %w", stmt, err)
		}
		fBody = append(fBody, ops...)
	}

	fDecl := vm.FuncDecl{Name: fName, NLocal: uint16(l.scopes.local.entries.Count())}

	switch subroutine.Type {
	case Constructor:
		// A constructor allocates its own object storage (one word per field) and binds
		// 'this' to it, unlike e.g. C++ where the caller already owns the memory.
		className := strings.Split(l.scopes.GetScope(), ".")[0]
		class, exists := l.program.Get(className)
		if !exists {
			return nil, fmt.Errorf("class '%s' not found", className)
		}

		var nFields uint16
		for _, entry := range class.Fields.Entries() {
			if entry.Value.Type == Field {
				nFields++
			}
		}

		prelude := []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: nFields},
			vm.FuncCallOp{Name: "Memory.alloc", NArgs: 1},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 0},
		}
		return append(append([]vm.Operation{fDecl}, prelude...), fBody...), nil

	case Method:
		// A method receives the target object as argument 0; bind 'this' to it before
		// running the body so field reads/writes resolve against the right instance.
		prelude := []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 0},
		}
		return append(append([]vm.Operation{fDecl}, prelude...), fBody...), nil

	default:
		return append([]vm.Operation{fDecl}, fBody...), nil
	}
}

// HandleStatement dispatches 'stmt' to the Handle*Stmt method matching its concrete type.
func (l *Lowerer) HandleStatement(stmt Statement) ([]vm.Operation, error) {
	switch tStmt := stmt.(type) {
	case DoStmt:
		return l.HandleDoStmt(tStmt)
	case VarStmt:
		return l.HandleVarStmt(tStmt)
	case LetStmt:
		return l.HandleLetStmt(tStmt)
	case IfStmt:
		return l.HandleIfStmt(tStmt)
	case WhileStmt:
		return l.HandleWhileStmt(tStmt)
	case ReturnStmt:
		return l.HandleReturnStmt(tStmt)
	default:
		return nil, fmt.Errorf("unrecognized statement: %T", stmt)
	}
}

// HandleDoStmt lowers a bare subroutine call, discarding its return value (every Jack
// subroutine leaves exactly one word on the stack, even 'void' ones, which must still be
// popped to keep the stack balanced).
func (l *Lowerer) HandleDoStmt(statement DoStmt) ([]vm.Operation, error) {
	ops, err := l.HandleFuncCallExpr(statement.FuncCall)
	if err != nil {
		return nil, fmt.Errorf("error handling nested function call expression: %w", err)
	}

	return append(ops, vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0}), nil
}

// HandleVarStmt registers each declared local in the current scope. A local declaration
// carries no runtime effect by itself — it only reserves a name and a VM-segment slot for
// later Let/Var expressions to resolve against — so no operations are emitted.
func (l *Lowerer) HandleVarStmt(statement VarStmt) ([]vm.Operation, error) {
	for _, variable := range statement.Vars {
		l.scopes.RegisterVariable(variable)
	}
	return nil, nil
}

// HandleLetStmt lowers an assignment. A plain-variable LHS just pops the evaluated RHS
// straight into that variable's segment slot; an array-cell LHS has to compute the
// target address first, stash the RHS value in a scratch slot, then re-point 'that'
// at the target address before popping the stashed value into it (so that evaluating
// the RHS, which might itself reference 'that', can't clobber the address).
func (l *Lowerer) HandleLetStmt(statement LetStmt) ([]vm.Operation, error) {
	rhsOps, err := l.HandleExpression(statement.Rhs)
	if err != nil {
		return nil, fmt.Errorf("error handling RHS expression: %w", err)
	}

	if expr, isVarExpr := statement.Lhs.(VarExpr); isVarExpr {
		offset, variable, err := l.scopes.ResolveVariable(expr.Var)
		if err != nil {
			return nil, fmt.Errorf("error resolving variable '%s' in array expression: %w", expr.Var, err)
		}

		switch variable.Type {
		case Local:
			return append(rhsOps, vm.MemoryOp{Operation: vm.Pop, Segment: vm.Local, Offset: offset}), nil
		case Parameter:
			return append(rhsOps, vm.MemoryOp{Operation: vm.Pop, Segment: vm.Argument, Offset: offset}), nil
		case Field:
			return append(rhsOps, vm.MemoryOp{Operation: vm.Pop, Segment: vm.This, Offset: offset}), nil
		case Static:
			return append(rhsOps, vm.MemoryOp{Operation: vm.Pop, Segment: vm.Static, Offset: offset}), nil
		default:
			return nil, fmt.Errorf("variable type '%s' is not supported yet", variable.Type)
		}
	}

	if expr, isArrayExpr := statement.Lhs.(ArrayExpr); isArrayExpr {
		baseOps, err := l.HandleVarExpr(VarExpr{Var: expr.Var})
		if err != nil {
			return nil, fmt.Errorf("error handling base variable expression: %w", err)
		}

		indexOps, err := l.HandleExpression(expr.Index)
		if err != nil {
			return nil, fmt.Errorf("error handling index expression: %w", err)
		}

		addrOps := append(append(indexOps, baseOps...), vm.ArithmeticOp{Operation: vm.Add})

		writeOps := []vm.Operation{
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1},
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.That, Offset: 0},
		}

		return append(append(addrOps, rhsOps...), writeOps...), nil
	}

	return nil, fmt.Errorf("LHS expression must be either a 'VarExpr' or an 'ArrayExpr', got: %T", statement.Lhs)
}

// HandleWhileStmt lowers a pre-checked loop: re-evaluate the condition at the top of
// each iteration, exit via a negated conditional jump to the end label, otherwise fall
// through the block and jump back to the top.
func (l *Lowerer) HandleWhileStmt(statement WhileStmt) ([]vm.Operation, error) {
	condOps, err := l.HandleExpression(statement.Condition)
	if err != nil {
		return nil, fmt.Errorf("error handling while condition expression: %w", err)
	}

	var blockOps []vm.Operation
	for _, stmt := range statement.Block {
		ops, err := l.HandleStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("error handling statement in while block: %w", err)
		}
		blockOps = append(blockOps, ops...)
	}

	startLabel, endLabel := fmt.Sprintf("WHILE_START_%d", l.nRandomizer), fmt.Sprintf("WHILE_END_%d", l.nRandomizer+1)
	defer func() { l.nRandomizer += 2 }()

	ops := []vm.Operation{vm.LabelDecl{Name: startLabel}}
	ops = append(ops, condOps...)
	ops = append(ops, vm.ArithmeticOp{Operation: vm.Not})
	ops = append(ops, vm.GotoOp{Label: endLabel, Jump: vm.Conditional})
	ops = append(ops, blockOps...)
	ops = append(ops, vm.GotoOp{Label: startLabel, Jump: vm.Unconditional})
	ops = append(ops, vm.LabelDecl{Name: endLabel})

	return ops, nil
}

// HandleIfStmt lowers a conditional. With no else block, a single negated conditional
// jump past the 'then' block is enough. With an else block, the condition is still
// negated once, but an extra unconditional jump at the end of 'then' is needed to skip
// over 'else' — two labels total ('ELSE' and 'END'), never one per branch.
func (l *Lowerer) HandleIfStmt(statement IfStmt) ([]vm.Operation, error) {
	condOps, err := l.HandleExpression(statement.Condition)
	if err != nil {
		return nil, fmt.Errorf("error handling if condition expression: %w", err)
	}

	var thenOps, elseOps []vm.Operation

	for _, stmt := range statement.ThenBlock {
		ops, err := l.HandleStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("error handling statement in 'then' block: %w", err)
		}
		thenOps = append(thenOps, ops...)
	}

	for _, stmt := range statement.ElseBlock {
		ops, err := l.HandleStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("error handling statement in 'else' block: %w", err)
		}
		elseOps = append(elseOps, ops...)
	}

	if len(elseOps) == 0 {
		elseLabel := fmt.Sprintf("ELSE_%d", l.nRandomizer)
		defer func() { l.nRandomizer += 1 }()

		ops := append(condOps, vm.ArithmeticOp{Operation: vm.Not})
		ops = append(ops, vm.GotoOp{Label: elseLabel, Jump: vm.Conditional})
		ops = append(ops, thenOps...)
		ops = append(ops, vm.LabelDecl{Name: elseLabel})

		return ops, nil
	}

	elseLabel, endLabel := fmt.Sprintf("ELSE_%d", l.nRandomizer), fmt.Sprintf("END_%d", l.nRandomizer+1)
	defer func() { l.nRandomizer += 2 }()

	ops := append(condOps, vm.ArithmeticOp{Operation: vm.Not})
	ops = append(ops, vm.GotoOp{Label: elseLabel, Jump: vm.Conditional})
	ops = append(ops, thenOps...)
	ops = append(ops, vm.GotoOp{Label: endLabel, Jump: vm.Unconditional})
	ops = append(ops, vm.LabelDecl{Name: elseLabel})
	ops = append(ops, elseOps...)
	ops = append(ops, vm.LabelDecl{Name: endLabel})

	return ops, nil
}

// HandleReturnStmt lowers a return. Every Jack subroutine must leave exactly one word on
// the stack for its caller, so a bare 'return' (no expression) still pushes a dummy zero.
func (l *Lowerer) HandleReturnStmt(statement ReturnStmt) ([]vm.Operation, error) {
	if statement.Expr == nil {
		return []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
			vm.ReturnOp{},
		}, nil
	}

	ops, err := l.HandleExpression(statement.Expr)
	if err != nil {
		return nil, fmt.Errorf("error handling return expression: %w", err)
	}

	return append(ops, vm.ReturnOp{}), nil
}

// HandleExpression dispatches 'expr' to the Handle*Expr method matching its concrete type.
func (l *Lowerer) HandleExpression(expr Expression) ([]vm.Operation, error) {
	switch tExpr := expr.(type) {
	case VarExpr:
		return l.HandleVarExpr(tExpr)
	case LiteralExpr:
		return l.HandleLiteralExpr(tExpr)
	case ArrayExpr:
		return l.HandleArrayExpr(tExpr)
	case UnaryExpr:
		return l.HandleUnaryExpr(tExpr)
	case BinaryExpr:
		return l.HandleBinaryExpr(tExpr)
	case FuncCallExpr:
		return l.HandleFuncCallExpr(tExpr)
	default:
		return nil, fmt.Errorf("unrecognized expression: %T", expr)
	}
}

// HandleVarExpr reads a variable's current value onto the stack. 'this' is special-cased
// since it isn't a declared variable — it reads straight off the pointer segment the
// enclosing method's prelude already bound.
func (l *Lowerer) HandleVarExpr(expression VarExpr) ([]vm.Operation, error) {
	if expression.Var == "this" {
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0}}, nil
	}

	offset, variable, err := l.scopes.ResolveVariable(expression.Var)
	if err != nil {
		return nil, fmt.Errorf("error resolving variable '%s' in array expression: %w", expression.Var, err)
	}

	switch variable.Type {
	case Local:
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: offset}}, nil
	case Parameter:
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: offset}}, nil
	case Field:
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.This, Offset: offset}}, nil
	case Static:
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Static, Offset: offset}}, nil
	default:
		return nil, fmt.Errorf("variable type '%s' is not supported", variable.Type)
	}
}

// HandleLiteralExpr lowers a constant literal: numbers push their value, 'true' pushes 1
// and negates it (-1, all bits set), 'false' and 'null' push 0, and a string literal
// allocates via 'String.new' and appends its characters one call to 'String.appendChar'
// at a time.
func (l *Lowerer) HandleLiteralExpr(expression LiteralExpr) ([]vm.Operation, error) {
	switch expression.Type {
	case Int:
		value, err := strconv.ParseUint(expression.Value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("error parsing integer literal '%s': %w", expression.Value, err)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(value)}}, nil

	case Bool:
		value, err := strconv.ParseBool(expression.Value)
		if err != nil {
			return nil, fmt.Errorf("error parsing integer literal '%s': %w", expression.Value, err)
		}
		if value {
			return []vm.Operation{
				vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 1},
				vm.ArithmeticOp{Operation: vm.Neg},
			}, nil
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0}}, nil

	case Char:
		if len(expression.Value) != 1 {
			return nil, fmt.Errorf("error parsing char literal '%s'", expression.Value)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(expression.Value[0])}}, nil

	case Object, Null:
		if expression.Value != "null" {
			return nil, fmt.Errorf("object literal are not supported '%s'", expression.Value)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0}}, nil

	case String:
		ops := []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(len(expression.Value))},
			vm.FuncCallOp{Name: "String.new", NArgs: 1},
		}
		for _, char := range expression.Value {
			ops = append(ops, vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(char)})
			ops = append(ops, vm.FuncCallOp{Name: "String.appendChar", NArgs: 2})
		}
		return ops, nil

	default:
		return nil, fmt.Errorf("unrecognized literal expression type: %s", expression.Type)
	}
}

// HandleArrayExpr reads one array cell: compute base+index, point 'that' at the result,
// then read through it.
func (l *Lowerer) HandleArrayExpr(expression ArrayExpr) ([]vm.Operation, error) {
	baseOps, err := l.HandleVarExpr(VarExpr{Var: expression.Var})
	if err != nil {
		return nil, fmt.Errorf("error handling base variable expression: %w", err)
	}

	indexOps, err := l.HandleExpression(expression.Index)
	if err != nil {
		return nil, fmt.Errorf("error handling index expression: %w", err)
	}

	return append(append(indexOps, baseOps...),
		vm.ArithmeticOp{Operation: vm.Add},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.That, Offset: 0},
	), nil
}

// HandleUnaryExpr lowers a prefix operator applied to its operand's lowered value.
func (l *Lowerer) HandleUnaryExpr(expression UnaryExpr) ([]vm.Operation, error) {
	ops, err := l.HandleExpression(expression.Rhs)
	if err != nil {
		return nil, fmt.Errorf("error handling nested expression: %w", err)
	}

	switch expression.Type {
	case Minus:
		return append(ops, vm.ArithmeticOp{Operation: vm.Neg}), nil
	case BoolNot:
		return append(ops, vm.ArithmeticOp{Operation: vm.Not}), nil
	default:
		return nil, fmt.Errorf("unrecognized unary expression type: %s", expression.Type)
	}
}

// HandleBinaryExpr lowers both operands (left then right, matching Jack's evaluation
// order) followed by the matching VM arithmetic op or, for multiply/divide, a call into
// the standard Math library (the Hack ALU has no native multiply or divide).
func (l *Lowerer) HandleBinaryExpr(expression BinaryExpr) ([]vm.Operation, error) {
	lhsOps, err := l.HandleExpression(expression.Lhs)
	if err != nil {
		return nil, fmt.Errorf("error handling nested LHS expression: %w", err)
	}

	rhsOps, err := l.HandleExpression(expression.Rhs)
	if err != nil {
		return nil, fmt.Errorf("error handling nested RHS expression: %w", err)
	}

	operands := append(lhsOps, rhsOps...)

	switch expression.Type {
	case Plus:
		return append(operands, vm.ArithmeticOp{Operation: vm.Add}), nil
	case Minus:
		return append(operands, vm.ArithmeticOp{Operation: vm.Sub}), nil
	case Divide:
		return append(operands, vm.FuncCallOp{Name: "Math.divide", NArgs: 2}), nil
	case Multiply:
		return append(operands, vm.FuncCallOp{Name: "Math.multiply", NArgs: 2}), nil
	case BoolOr:
		return append(operands, vm.ArithmeticOp{Operation: vm.Or}), nil
	case BoolAnd:
		return append(operands, vm.ArithmeticOp{Operation: vm.And}), nil
	case BoolNot:
		return append(operands, vm.ArithmeticOp{Operation: vm.Not}), nil
	case Equal:
		return append(operands, vm.ArithmeticOp{Operation: vm.Eq}), nil
	case LessThan:
		return append(operands, vm.ArithmeticOp{Operation: vm.Lt}), nil
	case GreatThan:
		return append(operands, vm.ArithmeticOp{Operation: vm.Gt}), nil
	default:
		return nil, fmt.Errorf("unrecognized binary expression type: %s", expression.Type)
	}
}

// HandleFuncCallExpr lowers a subroutine call in one of three shapes:
//   - a bare call ('sub(...)'), resolved against the enclosing class's own subroutine
//     table, which also tells us whether to thread 'this' through as an implicit first
//     argument;
//   - a call qualified by a variable already in scope ('obj.sub(...)'), which must be an
//     Object-typed variable — its value becomes the implicit 'this' argument;
//   - a call qualified by something else ('Class.sub(...)'), assumed to name a class
//     (standard-library or a sibling translation unit) and emitted as-is: the Hack VM
//     links calls to 'function' declarations by name at load time, not at compile time,
//     so there's nothing to resolve here.
func (l *Lowerer) HandleFuncCallExpr(expression FuncCallExpr) ([]vm.Operation, error) {
	var argsInit []vm.Operation
	argsLen := len(expression.Arguments)

	for _, expr := range expression.Arguments {
		ops, err := l.HandleExpression(expr)
		if err != nil {
			return nil, fmt.Errorf("error handling argument expression: %w", err)
		}
		argsInit = append(argsInit, ops...)
	}

	if !expression.IsExtCall {
		className := strings.Split(l.scopes.GetScope(), ".")[0]

		class, exists := l.program.Get(className)
		if !exists {
			return nil, fmt.Errorf("class defintion not found for '%s'", className)
		}
		routine, exists := class.Subroutines.Get(expression.FuncName)
		if !exists {
			return nil, fmt.Errorf("subroutine '%s' not found in class '%s'", expression.FuncName, className)
		}

		fName := fmt.Sprintf("%s.%s", className, expression.FuncName)

		if routine.Type == Method {
			thisOp := vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0}
			return append([]vm.Operation{thisOp}, append(argsInit, vm.FuncCallOp{Name: fName, NArgs: uint16(argsLen + 1)})...), nil
		}

		return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: uint16(argsLen)}), nil
	}

	if _, variable, err := l.scopes.ResolveVariable(expression.Var); err == nil {
		if variable.DataType != Object {
			return nil, fmt.Errorf("variable '%s' is not an object", expression.Var)
		}

		thisArg, err := l.HandleVarExpr(VarExpr{Var: expression.Var})
		if err != nil {
			return nil, fmt.Errorf("error handling variable expression for 'this' pointer: %w", err)
		}

		fName := fmt.Sprintf("%s.%s", variable.ClassName, expression.FuncName)
		return append(append(thisArg, argsInit...), vm.FuncCallOp{Name: fName, NArgs: uint16(argsLen + 1)}), nil
	}

	fName := fmt.Sprintf("%s.%s", expression.Var, expression.FuncName)
	return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: uint16(argsLen)}), nil
}
