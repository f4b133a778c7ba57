package jack

import "github.com/hmny-labs/n2t-toolchain/pkg/utils"

// This file declares the in-memory AST the Jack Parser builds and the Lowerer consumes:
// a Program is a set of Classes, each Class owns Fields and Subroutines, each Subroutine
// owns a body of Statements, and each Statement is built out of Expressions.

// Program collects every Class compiled together. Each Class lowers to its own VM
// module (one '.vm' file per class, mirroring a Java '.class' file).
type Program map[string]Class

// ----------------------------------------------------------------------------
// Classes

// Class is the Jack language's only top-level construct: a named bundle of Fields
// (the object's — or, for static fields, the class's own — state) and Subroutines (the
// operations that read and mutate that state). Both maps preserve declaration order,
// since field order determines each field's assigned VM-segment offset and subroutine
// order determines the order in which the class's functions are emitted.
type Class struct {
	Name        string
	Fields      utils.OrderedMap[string, Variable]
	Subroutines utils.OrderedMap[string, Subroutine]
}

// ----------------------------------------------------------------------------
// Subroutines

// Subroutine is one callable unit: a constructor, method or function, with a declared
// return type, an ordered parameter list, and the statement sequence making up its body.
type Subroutine struct {
	Name string
	Type SubroutineType

	Return    DataType
	Arguments []Variable

	Statements []Statement
}

// SubroutineType distinguishes the three calling conventions Jack supports: a Method
// takes an implicit 'this' as argument 0, a Constructor allocates the object before
// running, a Function is a plain call with neither.
type SubroutineType string

const (
	Method      SubroutineType = "method"
	Function    SubroutineType = "function"
	Constructor SubroutineType = "constructor"
)

// ----------------------------------------------------------------------------
// Statements

// Statement is the umbrella type for every construct that can appear in a subroutine
// body: DoStmt, VarStmt, LetStmt, ReturnStmt, IfStmt and WhileStmt.
type Statement interface{}

// DoStmt calls a subroutine purely for its side effects, discarding whatever it returns.
type DoStmt struct {
	FuncCall FuncCallExpr
}

// VarStmt declares one or more local variables without assigning them a value.
type VarStmt struct {
	Vars []Variable
}

// LetStmt assigns the value of Rhs to the storage location named by Lhs (a VarExpr for
// a plain variable, or an ArrayExpr for an indexed array cell).
type LetStmt struct {
	Lhs Expression
	Rhs Expression
}

// ReturnStmt exits the enclosing subroutine, optionally carrying a value back to the
// caller (Expr is nil for a subroutine declared to return 'void').
type ReturnStmt struct {
	Expr Expression
}

// IfStmt forks control flow on Condition: ThenBlock runs when it's true, ElseBlock
// (possibly empty) when it's false.
type IfStmt struct {
	Condition Expression
	ThenBlock []Statement
	ElseBlock []Statement
}

// WhileStmt re-evaluates Condition before every iteration of Block, exiting as soon as
// it's false.
type WhileStmt struct {
	Condition Expression
	Block     []Statement
}

// ----------------------------------------------------------------------------
// Expressions

// Expression is the umbrella type for everything that produces a value: VarExpr,
// LiteralExpr, ArrayExpr, UnaryExpr, BinaryExpr and FuncCallExpr.
type Expression interface{}

// VarExpr reads the current value of a named variable.
type VarExpr struct {
	Var string
}

// LiteralExpr is a constant embedded directly in the source (a number, a string, a
// boolean, 'null' or 'this').
type LiteralExpr struct {
	Type  DataType
	Value string
}

// ArrayExpr reads one indexed cell out of an array-typed variable.
type ArrayExpr struct {
	Var   string
	Index Expression
}

// UnaryExpr applies a prefix operator (only Minus or BoolNot are valid here) to Rhs.
type UnaryExpr struct {
	Type ExprType
	Rhs  Expression
}

// BinaryExpr applies an infix operator (every ExprType except BoolNot is valid here) to
// Lhs and Rhs, evaluated left to right.
type BinaryExpr struct {
	Type ExprType
	Lhs  Expression
	Rhs  Expression
}

// FuncCallExpr invokes a subroutine, either a bare call within the current class or
// (when IsExtCall) a call qualified by a class or variable name ('Class.sub(...)' or
// 'var.sub(...)').
type FuncCallExpr struct {
	IsExtCall bool
	Var       string
	FuncName  string

	Arguments []Expression
}

// ExprType enumerates every unary and binary operator Jack expressions can use.
type ExprType string

const (
	Plus     ExprType = "plus"
	Minus    ExprType = "minus" // subtraction as a BinaryExpr, arithmetic negation as a UnaryExpr
	Divide   ExprType = "divide"
	Multiply ExprType = "multiply"

	BoolOr  ExprType = "bool_or"
	BoolAnd ExprType = "bool_and"
	BoolNot ExprType = "bool_neg"

	Equal     ExprType = "equal"
	LessThan  ExprType = "less_than"
	GreatThan ExprType = "greater_than"
)

// ----------------------------------------------------------------------------
// Variables

// Variable describes one declared name, whether a class field (static or per-instance),
// a subroutine parameter, or a subroutine local.
type Variable struct {
	Name      string
	Type      VarType
	DataType  DataType
	ClassName string // set only when DataType is Object, names the object's class
}

// VarType distinguishes where a Variable lives: a class-wide Static, a per-instance
// Field, a subroutine Parameter, or a subroutine Local.
type VarType string

const (
	Local     VarType = "local"
	Field     VarType = "field"
	Static    VarType = "static"
	Parameter VarType = "parameter"
)

// DataType enumerates Jack's primitive and reference types.
type DataType string

const (
	Int    DataType = "int"
	Bool   DataType = "bool"
	Char   DataType = "char"
	Null   DataType = "null"
	String DataType = "string"
	Void   DataType = "void"
	Object DataType = "object"
)
