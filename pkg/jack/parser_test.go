package jack_test

import (
	"testing"

	"github.com/hmny-labs/n2t-toolchain/pkg/jack"
)

func TestParserClassStructure(t *testing.T) {
	source := `
	class Point {
		field int x, y;
		static int count;

		constructor Point new(int ax, int ay) {
			let x = ax;
			let y = ay;
			return this;
		}

		method int getX() {
			return x;
		}

		function int distance(Point a, Point b) {
			return 0;
		}
	}
	`

	parser, err := jack.NewJackParser(source)
	if err != nil {
		t.Fatalf("unexpected error tokenizing: %s", err)
	}

	class, _, err := parser.Parse(false)
	if err != nil {
		t.Fatalf("unexpected error parsing: %s", err)
	}

	if class.Name != "Point" {
		t.Fatalf("expected class name 'Point', got '%s'", class.Name)
	}

	if class.Fields.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", class.Fields.Len())
	}
	xField, ok := class.Fields.Get("x")
	if !ok || xField.Type != jack.Field || xField.DataType != jack.Int {
		t.Fatalf("unexpected field 'x': %+v (found: %v)", xField, ok)
	}
	countField, ok := class.Fields.Get("count")
	if !ok || countField.Type != jack.Static {
		t.Fatalf("unexpected field 'count': %+v (found: %v)", countField, ok)
	}

	if class.Subroutines.Len() != 3 {
		t.Fatalf("expected 3 subroutines, got %d", class.Subroutines.Len())
	}

	constructor, ok := class.Subroutines.Get("new")
	if !ok || constructor.Type != jack.Constructor {
		t.Fatalf("unexpected subroutine 'new': %+v (found: %v)", constructor, ok)
	}
	if len(constructor.Arguments) != 2 {
		t.Fatalf("expected 2 arguments for 'new', got %d", len(constructor.Arguments))
	}
	if len(constructor.Statements) != 3 {
		t.Fatalf("expected 3 statements in 'new', got %d", len(constructor.Statements))
	}

	method, ok := class.Subroutines.Get("getX")
	if !ok || method.Type != jack.Method {
		t.Fatalf("unexpected subroutine 'getX': %+v (found: %v)", method, ok)
	}

	fn, ok := class.Subroutines.Get("distance")
	if !ok || fn.Type != jack.Function || len(fn.Arguments) != 2 {
		t.Fatalf("unexpected subroutine 'distance': %+v (found: %v)", fn, ok)
	}
	if fn.Arguments[0].DataType != jack.Object || fn.Arguments[0].ClassName != "Point" {
		t.Fatalf("expected first argument of 'distance' to be a 'Point', got %+v", fn.Arguments[0])
	}
}

func TestParserExpressions(t *testing.T) {
	source := `
	class Main {
		function void main() {
			var int sum;
			let sum = (1 + 2) * 3;
			if (sum > 0) {
				do Output.printInt(sum);
			} else {
				let sum = -sum;
			}
			while (sum > 0) {
				let sum = sum - 1;
			}
			return;
		}
	}
	`

	parser, err := jack.NewJackParser(source)
	if err != nil {
		t.Fatalf("unexpected error tokenizing: %s", err)
	}

	class, _, err := parser.Parse(false)
	if err != nil {
		t.Fatalf("unexpected error parsing: %s", err)
	}

	main, ok := class.Subroutines.Get("main")
	if !ok {
		t.Fatalf("expected subroutine 'main' to be present")
	}

	// varDec + let + if + while + return
	if len(main.Statements) != 5 {
		t.Fatalf("expected 5 statements in 'main', got %d: %+v", len(main.Statements), main.Statements)
	}

	ifStmt, ok := main.Statements[2].(jack.IfStmt)
	if !ok {
		t.Fatalf("expected statement 2 to be an IfStmt, got %T", main.Statements[2])
	}
	if len(ifStmt.ThenBlock) != 1 || len(ifStmt.ElseBlock) != 1 {
		t.Fatalf("expected 1 statement in each if branch, got then=%d else=%d", len(ifStmt.ThenBlock), len(ifStmt.ElseBlock))
	}

	whileStmt, ok := main.Statements[3].(jack.WhileStmt)
	if !ok {
		t.Fatalf("expected statement 3 to be a WhileStmt, got %T", main.Statements[3])
	}
	if len(whileStmt.Block) != 1 {
		t.Fatalf("expected 1 statement in while block, got %d", len(whileStmt.Block))
	}
}

func TestParserBuildsParseTree(t *testing.T) {
	parser, err := jack.NewJackParser(`class Main { function void main() { return; } }`)
	if err != nil {
		t.Fatalf("unexpected error tokenizing: %s", err)
	}

	class, tree, err := parser.Parse(true)
	if err != nil {
		t.Fatalf("unexpected error parsing: %s", err)
	}
	if class.Name != "Main" {
		t.Fatalf("expected class name 'Main', got '%s'", class.Name)
	}
	if tree == nil {
		t.Fatalf("expected a non-nil parse tree when buildTree is true")
	}
	if tree.Tag != "class" {
		t.Fatalf("expected root tag 'class', got '%s'", tree.Tag)
	}

	xml := tree.ToXML(0)
	if xml == "" {
		t.Fatalf("expected non-empty XML rendering of the parse tree")
	}
}
