package vm

import (
	"fmt"
	"io"
	"os"
	"strconv"

	pc "github.com/prataprc/goparsec"
)

// ----------------------------------------------------------------------------
// Grammar

// The VM intermediate language is flat and line-oriented, just like Hack assembly, so
// it's expressed the same way: one goparsec production per instruction shape, with
// comments treated as just another top-level alternative so they can appear anywhere a
// real instruction could.

var grammar = pc.NewAST("virtual_machine", 0)

var (
	// A module mirrors one '.vm' translation unit — one Jack class compiles to one module.
	pModule = grammar.ManyUntil("module", nil, grammar.OrdChoice("node", nil, pComment, pOperation), pc.End())

	pComment = grammar.And("comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT"))

	pOperation = grammar.OrdChoice("operation", nil,
		pMemoryOp, pArithmeticOp, pLabelDecl, pGotoOp,
		pFuncDecl, pFunCallOp, pReturnOp,
	)

	// "{push|pop} {segment} {index}"
	pMemoryOp = grammar.And("memory_op", nil, pMemOpType, pSegment, pc.Int())
	// "{eq|gt|lt|add|sub|neg|not|and|or}"
	pArithmeticOp = grammar.And("arithmetic_op", nil, pArithOpType)

	// "label {name}"
	pLabelDecl = grammar.And("label_decl", nil, pc.Atom("label", "LABEL"), pIdent)
	// "{goto|if-goto} {name}"
	pGotoOp = grammar.And("goto_op", nil, pJumpType, pIdent)

	// "function {name} {n_locals}"
	pFuncDecl = grammar.And("func_decl", nil, pc.Atom("function", "FUNC"), pIdent, pc.Int())
	// "call {name} {n_args}"
	pFunCallOp = grammar.And("func_call", nil, pc.Atom("call", "CALL"), pIdent, pc.Int())
	// "return"
	pReturnOp = grammar.And("return_op", nil, pc.Atom("return", "RETURN"))
)

var (
	// A name may contain letters, digits and '_.$:' but, like a Hack assembly symbol,
	// must not start with a digit.
	pIdent = pc.Token(`[A-Za-z_.$:][0-9a-zA-Z_.$:]*`, "IDENT")

	pMemOpType = grammar.OrdChoice("mem_op_type", nil, pc.Atom("push", "PUSH"), pc.Atom("pop", "POP"))

	pSegment = grammar.OrdChoice("mem_segment", nil,
		pc.Atom("argument", "ARGUMENT"), pc.Atom("local", "LOCAL"),
		pc.Atom("static", "STATIC"), pc.Atom("constant", "CONSTANT"),
		pc.Atom("this", "THIS"), pc.Atom("that", "THAT"),
		pc.Atom("temp", "TEMP"), pc.Atom("pointer", "POINTER"),
	)

	pArithOpType = grammar.OrdChoice("operations", nil,
		pc.Atom("eq", "EQ"), pc.Atom("gt", "GT"), pc.Atom("lt", "LT"),
		pc.Atom("add", "ADD"), pc.Atom("sub", "SUB"), pc.Atom("neg", "NEG"),
		pc.Atom("not", "NOT"), pc.Atom("and", "AND"), pc.Atom("or", "OR"),
	)

	pJumpType = grammar.OrdChoice("jump_type", nil, pc.Atom("goto", "GOTO"), pc.Atom("if-goto", "IF-GOTO"))
)

// ----------------------------------------------------------------------------
// Parser

// Parser turns VM source text into a Module, going through goparsec twice: once to scan
// the text into a generic AST (FromSource), once more to walk that AST into typed
// Operation values (FromAST).
//
// Env vars for inspecting the grammar while it's being developed:
//   - PARSEC_DEBUG: trace which combinator matched where
//   - EXPORT_AST:   dump the AST as Graphviz dot to $EXPORT_AST/debug.ast.dot
//   - PRINT_AST:    pretty-print the AST to stdout
type Parser struct{ reader io.Reader }

func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

func (p *Parser) Parse() (Module, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read from 'io.Reader': %s", err)
	}

	root, ok := p.FromSource(content)
	if !ok {
		return nil, fmt.Errorf("failed to parse AST from input content")
	}

	return p.FromAST(root)
}

// FromSource scans 'source' and returns the root of the resulting AST.
func (p *Parser) FromSource(source []byte) (pc.Queryable, bool) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		grammar.SetDebug()
	}

	root, _ := grammar.Parsewith(pModule, pc.NewScanner(source))

	if folder := os.Getenv("EXPORT_AST"); folder != "" {
		if file, err := os.Create(fmt.Sprintf("%s/debug.ast.dot", folder)); err == nil {
			file.Write([]byte(grammar.Dotstring(`"VM AST"`)))
			file.Close()
		}
	}
	if os.Getenv("PRINT_AST") != "" {
		grammar.Prettyprint()
	}

	return root, root != nil
}

// FromAST walks the root 'module' node and converts each child subtree into the
// matching vm.Operation, skipping comments entirely.
func (p *Parser) FromAST(root pc.Queryable) (Module, error) {
	if root.GetName() != "module" {
		return nil, fmt.Errorf("expected node 'module', found %s", root.GetName())
	}

	module := make([]Operation, 0, len(root.GetChildren()))

	for _, node := range root.GetChildren() {
		var op Operation
		var err error

		switch node.GetName() {
		case "memory_op":
			op, err = p.HandleMemoryOp(node)
		case "arithmetic_op":
			op, err = p.HandleArithmeticOp(node)
		case "label_decl":
			op, err = p.HandleLabelDecl(node)
		case "goto_op":
			op, err = p.HandleGotoOp(node)
		case "func_decl":
			op, err = p.HandleFuncDecl(node)
		case "return_op":
			op, err = p.HandleReturnOp(node)
		case "func_call":
			op, err = p.HandleFuncCall(node)
		case "comment":
			continue
		default:
			return nil, fmt.Errorf("unrecognized node '%s'", node.GetName())
		}

		if err != nil || op == nil {
			return nil, err
		}
		module = append(module, op)
	}

	return module, nil
}

// HandleMemoryOp converts a "memory_op" ('{push|pop} segment index') subtree to a vm.MemoryOp.
func (Parser) HandleMemoryOp(node pc.Queryable) (Operation, error) {
	if node.GetName() != "memory_op" {
		return nil, fmt.Errorf("expected node 'memory_op', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 3 {
		return nil, fmt.Errorf("expected node 'memory_op' with 3 children, got %d", len(node.GetChildren()))
	}

	operation := OperationType(node.GetChildren()[0].GetValue())
	segment := SegmentType(node.GetChildren()[1].GetValue())
	offset, err := strconv.ParseUint(node.GetChildren()[2].GetValue(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid memory_op offset %q: %w", node.GetChildren()[2].GetValue(), err)
	}

	return MemoryOp{Operation: operation, Segment: segment, Offset: uint16(offset)}, nil
}

// HandleArithmeticOp converts an "arithmetic_op" subtree to a vm.ArithmeticOp.
func (Parser) HandleArithmeticOp(node pc.Queryable) (Operation, error) {
	if node.GetName() != "arithmetic_op" {
		return nil, fmt.Errorf("expected node 'arithmetic_op', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 1 {
		return nil, fmt.Errorf("expected node 'arithmetic_op' with 1 child, got %d", len(node.GetChildren()))
	}

	return ArithmeticOp{Operation: ArithOpType(node.GetChildren()[0].GetValue())}, nil
}

// HandleLabelDecl converts a "label_decl" ('label NAME') subtree to a vm.LabelDecl.
func (Parser) HandleLabelDecl(node pc.Queryable) (Operation, error) {
	if node.GetName() != "label_decl" {
		return nil, fmt.Errorf("expected node 'label_decl', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 2 {
		return nil, fmt.Errorf("expected node 'label_decl' with 2 children, got %d", len(node.GetChildren()))
	}

	return LabelDecl{Name: node.GetChildren()[1].GetValue()}, nil
}

// HandleGotoOp converts a "goto_op" ('{goto|if-goto} NAME') subtree to a vm.GotoOp.
func (Parser) HandleGotoOp(node pc.Queryable) (Operation, error) {
	if node.GetName() != "goto_op" {
		return nil, fmt.Errorf("expected node 'goto_op', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 2 {
		return nil, fmt.Errorf("expected node 'goto_op' with 2 children, got %d", len(node.GetChildren()))
	}

	return GotoOp{
		Jump:  JumpType(node.GetChildren()[0].GetValue()),
		Label: node.GetChildren()[1].GetValue(),
	}, nil
}

// HandleFuncDecl converts a "func_decl" ('function NAME n_locals') subtree to a vm.FuncDecl.
func (Parser) HandleFuncDecl(node pc.Queryable) (Operation, error) {
	if node.GetName() != "func_decl" {
		return nil, fmt.Errorf("expected node 'func_decl', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 3 {
		return nil, fmt.Errorf("expected node 'func_decl' with 3 children, got %d", len(node.GetChildren()))
	}

	name := node.GetChildren()[1].GetValue()
	nLocal, err := strconv.ParseUint(node.GetChildren()[2].GetValue(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid func_decl local count %q: %w", node.GetChildren()[2].GetValue(), err)
	}

	return FuncDecl{Name: name, NLocal: uint16(nLocal)}, nil
}

// HandleReturnOp converts a "return_op" subtree to a vm.ReturnOp.
func (Parser) HandleReturnOp(node pc.Queryable) (Operation, error) {
	if node.GetName() != "return_op" {
		return nil, fmt.Errorf("expected node 'return_op', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 1 {
		return nil, fmt.Errorf("expected node 'return_op' with 1 child, got %d", len(node.GetChildren()))
	}

	return ReturnOp{}, nil
}

// HandleFuncCall converts a "func_call" ('call NAME n_args') subtree to a vm.FuncCallOp.
func (Parser) HandleFuncCall(node pc.Queryable) (Operation, error) {
	if node.GetName() != "func_call" {
		return nil, fmt.Errorf("expected node 'func_call', got %s", node.GetName())
	}
	if len(node.GetChildren()) != 3 {
		return nil, fmt.Errorf("expected node 'func_call' with 3 children, got %d", len(node.GetChildren()))
	}

	name := node.GetChildren()[1].GetValue()
	nArgs, err := strconv.ParseUint(node.GetChildren()[2].GetValue(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid func_call arg count %q: %w", node.GetChildren()[2].GetValue(), err)
	}

	return FuncCallOp{Name: name, NArgs: uint16(nArgs)}, nil
}
