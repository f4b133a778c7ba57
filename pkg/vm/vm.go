package vm

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the VM intermediate language.
//
// We declare a shared 'Operation' interface for every macro operation available for the
// language and we define some other useful top-level struct such as Program and Module.
// Is important to note that a VM program can be composed of multiple translation units
// that can be also referenced as file or modules or also classes.

// A VM Program is just a set of multiple modules/files, in the VM spec each Jack class is
// translated to its own .vm file (just like Java .class file) that can be handled as its
// own translation unit during the compilation or lowering phases. Keyed by module/file name
// since the static segment and bootstrap ordering both need a stable handle on it.
type Program map[string]Module

// A VM Module is just a linear list of VM operations/instructions
type Module []Operation

// Used to put together all operation in the VM language (Memory, Arithmetic, ... ops).
type Operation interface{}

// ----------------------------------------------------------------------------
// Memory Op

// In memory representation of a Memory operation for the VM language.
//
// In the VM intermediate language there are only two possible memory operation on the stack.
// We could either push a new value taken from the specified segment location on the stack's
// top or take the stack's top and saves its value at the specified segment location.
type MemoryOp struct {
	Operation OperationType // The type of operation, either 'push' or 'pop'
	Segment   SegmentType   // The named memory segment to use (this, that, temp, ...)
	Offset    uint16        // The specific location/offset inside of the memory segment
}

type OperationType string // Enum to manage the operation allowed for a MemoryOp

const (
	Push OperationType = "push"
	Pop  OperationType = "pop"
)

type SegmentType string // Enum to manage the segment accessible for a MemoryOp

const (
	Temp     SegmentType = "temp"     // Real segment used to store intermediate computations
	Constant SegmentType = "constant" // Virtual segment used to access numeric constant

	Local    SegmentType = "local"    // Real segment used to store local function variables
	Static   SegmentType = "static"   // Real segment used to store shared/static variables
	Argument SegmentType = "argument" // Real segment used to store function's argument

	This    SegmentType = "this"    // Virtual segment used to point to a specific memory location
	That    SegmentType = "that"    // Virtual segment used to point to a specific memory location
	Pointer SegmentType = "pointer" // Real segment w/ 2 location used to set the 'this' and 'that' pointers
)

// ----------------------------------------------------------------------------
// Arithmetic Op

// In memory representation of a Arithmetic operation for the VM language.
//
// In the VM intermediate language there are just a handful of operation available.
// In particular each operation acts directly on the top of the stack, of course we have both unary
// and binary operation, the specific management of each op will be handled in the codegen phase.
type ArithmeticOp struct{ Operation ArithOpType }

type ArithOpType string // Enum to manage the operation allowed for an ArithmeticOp

const (
	Eq ArithOpType = "eq" // Comparison operations
	Gt ArithOpType = "gt"
	Lt ArithOpType = "lt"

	Add ArithOpType = "add" // Arithmetic operations
	Sub ArithOpType = "sub"
	Neg ArithOpType = "neg"

	Not ArithOpType = "not" // Bitwise operations
	And ArithOpType = "and"
	Or  ArithOpType = "or"
)

// ----------------------------------------------------------------------------
// Branching Ops

// In memory representation of a label declaration statement for the VM language.
//
// Labels are scoped to the enclosing function: the same bare name can be reused across
// functions without clashing, since the lowering phase qualifies it with the name of whichever
// function is currently being translated before it ever reaches assembly.
type LabelDecl struct{ Name string }

// In memory representation of a jump statement ('goto' or 'if-goto') for the VM language.
type GotoOp struct {
	Jump  JumpType // Whether the jump is unconditional or predicated on the stack's top value
	Label string   // The bare (unqualified) label name being jumped to
}

type JumpType string // Enum to manage the two jump flavors available for a GotoOp

const (
	Unconditional JumpType = "goto"    // Always taken
	Conditional   JumpType = "if-goto" // Taken only if the popped stack value is non-zero (true)
)

// ----------------------------------------------------------------------------
// Function Ops

// In memory representation of a function declaration statement for the VM language.
//
// Marks the entry point of a function and how many local variables it needs, the Lowerer
// is responsible for zero-initializing exactly 'NLocal' slots right after the entry label.
type FuncDecl struct {
	Name   string // Fully qualified function name (e.g. "Main.fibonacci")
	NLocal uint16 // Number of local variables to zero-initialize on entry
}

// In memory representation of a function call statement for the VM language.
//
// Encodes the full Hack calling-convention: saving the caller's frame, repositioning ARG/LCL
// for the callee and jumping to it. See Lowerer.translateFuncCallOp for the actual protocol.
type FuncCallOp struct {
	Name  string // Fully qualified name of the function being called
	NArgs uint16 // Number of arguments already pushed onto the stack by the caller
}

// In memory representation of a return statement for the VM language.
//
// Tears down the callee's frame, restores the caller's saved segment pointers and jumps back
// to the return address. The 'NArgs == 0' case needs its own care: ARG[0] is then the very
// slot holding the return address, so that address is saved before the return value is
// written there.
type ReturnOp struct{}
