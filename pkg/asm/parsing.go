package asm

import (
	"fmt"
	"io"
	"os"

	pc "github.com/prataprc/goparsec"
)

// ----------------------------------------------------------------------------
// Grammar

// The Hack assembly grammar is flat and line-oriented (one instruction per line), which is
// exactly the shape goparsec's combinators are built for: each production below is expressed
// directly as a PC rather than through a hand-rolled recursive descent parser.

var grammar = pc.NewAST("assembler", 0)

var (
	pProgram = grammar.ManyUntil("program", nil, grammar.OrdChoice("item", nil, pComment, pInstruction), pc.End())

	pInstruction = grammar.OrdChoice("instruction", nil, pAInst, pCInst, pLabelDecl)

	// A comment runs from '//' to the end of its line; it never nests and never crosses lines.
	pComment = grammar.And("comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT"))

	pAInst     = grammar.And("a-inst", nil, pc.Atom("@", "@"), pLocation)
	pLabelDecl = grammar.And("label-decl", nil, pc.Atom("(", "("), pLocation, pc.Atom(")", ")"))

	// dest=comp;jump, where both 'dest=' and ';jump' are independently optional.
	pCInst = grammar.And("c-inst", nil,
		grammar.Maybe("maybe-assign", nil, grammar.And("assign", nil, pDest, pc.Atom("=", "="))),
		pComp,
		grammar.Maybe("maybe-goto", nil, grammar.And("goto", nil, pc.Atom(";", ";"), pJump)),
	)
)

var (
	// A location names either a raw address/line number or a symbol (label or variable); it's
	// shared between A-instructions ('@LOOP') and label declarations ('(LOOP)'). A symbol may
	// contain letters, digits and '_.$:' but, unlike a raw address, may not start with a digit.
	pLocation = grammar.OrdChoice("label", nil, pc.Int(), pc.Token(`[A-Za-z_.$:][0-9a-zA-Z_.$:]*`, "SYMBOL"))

	// Multi-character mnemonics must be tried before their single-character prefixes, or the
	// shorter alternative would win the match and strand the rest of the mnemonic unparsed.
	pDest = grammar.OrdChoice("dest", nil,
		pc.Atom("AMD", "AMD"),
		pc.Atom("AM", "AM"), pc.Atom("AD", "AD"), pc.Atom("MD", "MD"),
		pc.Atom("D", "D"), pc.Atom("A", "A"), pc.Atom("M", "M"),
	)

	pComp = grammar.OrdChoice("comp", nil,
		pc.Atom("D&A", "D&A"), pc.Atom("D&M", "D&M"),
		pc.Atom("D|A", "D|A"), pc.Atom("D|M", "D|M"),
		pc.Atom("D+A", "D+A"), pc.Atom("D+M", "D+M"),
		pc.Atom("D-A", "D-A"), pc.Atom("D-M", "D-M"),
		pc.Atom("A-D", "A-D"), pc.Atom("M-D", "M-D"),
		pc.Atom("D+1", "D+1"), pc.Atom("A+1", "A+1"), pc.Atom("M+1", "M+1"),
		pc.Atom("D-1", "D-1"), pc.Atom("A-1", "A-1"), pc.Atom("M-1", "M-1"),
		pc.Atom("!D", "!D"), pc.Atom("!A", "!A"), pc.Atom("!M", "!M"),
		pc.Atom("-D", "-D"), pc.Atom("-A", "-A"), pc.Atom("-M", "-M"),
		pc.Atom("0", "0"), pc.Atom("1", "1"), pc.Atom("-1", "-1"),
		pc.Atom("D", "D"), pc.Atom("A", "A"), pc.Atom("M", "M"),
	)

	pJump = grammar.OrdChoice("jump", nil,
		pc.Atom("JNE", "JNE"), pc.Atom("JEQ", "JEQ"),
		pc.Atom("JGT", "JGT"), pc.Atom("JGE", "JGE"),
		pc.Atom("JLT", "JLT"), pc.Atom("JLE", "JLE"),
		pc.Atom("JMP", "JMP"),
	)
)

// ----------------------------------------------------------------------------
// Parser

// Parser turns Hack assembly source text into an 'asm.Program'. It goes through goparsec
// twice: once to scan the source into a generic, library-owned AST (FromSource), and once
// more to walk that AST into our own typed 'Instruction' values (FromAST) so that nothing
// outside this file ever has to know goparsec's node shapes.
//
// Three env vars switch on goparsec's own debugging aids while developing the grammar:
//   - PARSEC_DEBUG: verbose trace of which combinator matched where
//   - EXPORT_AST:   dumps the AST as Graphviz dot to $EXPORT_AST/debug.ast.dot
//   - PRINT_AST:    pretty-prints the AST to stdout
type Parser struct{ reader io.Reader }

func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

func (p *Parser) Parse() (Program, error) {
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

	root, _ := grammar.Parsewith(pProgram, pc.NewScanner(source))

	if folder := os.Getenv("EXPORT_AST"); folder != "" {
		if file, err := os.Create(fmt.Sprintf("%s/debug.ast.dot", folder)); err == nil {
			file.Write([]byte(grammar.Dotstring(`"Assembler AST"`)))
			file.Close()
		}
	}
	if os.Getenv("PRINT_AST") != "" {
		grammar.Prettyprint()
	}

	return root, root != nil
}

// FromAST walks the root 'program' node and converts each child subtree into the matching
// 'asm.Instruction', skipping comments entirely.
func (p *Parser) FromAST(root pc.Queryable) (Program, error) {
	if root.GetName() != "program" {
		return nil, fmt.Errorf("expected node 'program', found %s", root.GetName())
	}

	program := make([]Instruction, 0, len(root.GetChildren()))

	for _, node := range root.GetChildren() {
		var inst Instruction
		var err error

		switch node.GetName() {
		case "a-inst":
			inst, err = p.HandleAInst(node)
		case "c-inst":
			inst, err = p.HandleCInst(node)
		case "label-decl":
			inst, err = p.HandleLabelDecl(node)
		case "comment":
			continue
		default:
			return nil, fmt.Errorf("unrecognized node '%s'", node.GetName())
		}

		if err != nil || inst == nil {
			return nil, err
		}
		program = append(program, inst)
	}

	return program, nil
}

// HandleAInst converts an "a-inst" ('@location') subtree to an 'asm.AInstruction'.
func (Parser) HandleAInst(node pc.Queryable) (Instruction, error) {
	if node.GetName() != "a-inst" {
		return nil, fmt.Errorf("expected node 'a-inst', found %s", node.GetName())
	}

	location := node.GetChildren()[1]
	if location.GetName() != "INT" && location.GetName() != "SYMBOL" {
		return nil, fmt.Errorf("expected token 'SYMBOL' or 'INT', got %s", location.GetName())
	}

	return AInstruction{Location: location.GetValue()}, nil
}

// HandleCInst converts a "c-inst" ('dest=comp;jump') subtree to an 'asm.CInstruction'. Both
// the 'dest=' and the ';jump' clauses are independently optional on the grammar side, so both
// are checked independently here too: a fully-loaded instruction like 'D=D-1;JGT' must keep
// all three fields, not just whichever clause happens to be inspected first.
func (Parser) HandleCInst(node pc.Queryable) (Instruction, error) {
	if node.GetName() != "c-inst" {
		return nil, fmt.Errorf("expected node 'c-inst', found %s", node.GetName())
	}

	assign, comp, goto_ := node.GetChildren()[0], node.GetChildren()[1], node.GetChildren()[2]
	result := CInstruction{Comp: comp.GetValue()}

	if assign.GetName() == "assign" && len(assign.GetChildren()) == 2 {
		result.Dest = assign.GetChildren()[0].GetValue()
	}
	if goto_.GetName() == "goto" && len(goto_.GetChildren()) == 2 {
		result.Jump = goto_.GetChildren()[1].GetValue()
	}

	if result.Dest == "" && result.Jump == "" {
		return nil, fmt.Errorf("expected either node 'assign' or 'goto' not found")
	}

	return result, nil
}

// HandleLabelDecl converts a "label-decl" ('(NAME)') subtree to an 'asm.LabelDecl'.
func (Parser) HandleLabelDecl(node pc.Queryable) (Instruction, error) {
	if node.GetName() != "label-decl" {
		return nil, fmt.Errorf("expected node 'label-decl', found %s", node.GetName())
	}

	name := node.GetChildren()[1]
	if name.GetName() != "SYMBOL" {
		return nil, fmt.Errorf("expected token 'SYMBOL', got %s", name.GetName())
	}

	return LabelDecl{Name: name.GetValue()}, nil
}
