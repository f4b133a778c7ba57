package jack_test

import (
	"testing"

	"github.com/hmny-labs/n2t-toolchain/pkg/jack"
)

func TestTokenizer(t *testing.T) {
	test := func(source string, expected []jack.Token, fail bool) {
		tokens, err := jack.NewTokenizer(source).Tokenize()
		if err != nil && !fail {
			t.Fatalf("unexpected error: %s", err)
		}
		if err == nil && fail {
			t.Fatalf("expected an error, got none")
		}
		if fail {
			return
		}

		if len(tokens) != len(expected) {
			t.Fatalf("expected %d tokens, got %d (%v)", len(expected), len(tokens), tokens)
		}
		for i, tok := range tokens {
			if tok != expected[i] {
				t.Fatalf("token %d: expected %+v, got %+v", i, expected[i], tok)
			}
		}
	}

	t.Run("Keywords and symbols", func(t *testing.T) {
		test("class Main { }", []jack.Token{
			{Type: jack.Keyword, Value: "class"},
			{Type: jack.Identifier, Value: "Main"},
			{Type: jack.Symbol, Value: "{"},
			{Type: jack.Symbol, Value: "}"},
		}, false)
	})

	t.Run("Literals", func(t *testing.T) {
		test(`let x = 42;`, []jack.Token{
			{Type: jack.Keyword, Value: "let"},
			{Type: jack.Identifier, Value: "x"},
			{Type: jack.Symbol, Value: "="},
			{Type: jack.IntConst, Value: "42"},
			{Type: jack.Symbol, Value: ";"},
		}, false)

		test(`do Output.printString("hi");`, []jack.Token{
			{Type: jack.Keyword, Value: "do"},
			{Type: jack.Identifier, Value: "Output"},
			{Type: jack.Symbol, Value: "."},
			{Type: jack.Identifier, Value: "printString"},
			{Type: jack.Symbol, Value: "("},
			{Type: jack.StringConst, Value: "hi"},
			{Type: jack.Symbol, Value: ")"},
			{Type: jack.Symbol, Value: ";"},
		}, false)
	})

	t.Run("Comments are skipped", func(t *testing.T) {
		test("// a line comment\nlet /* inline */ x = 1;", []jack.Token{
			{Type: jack.Keyword, Value: "let"},
			{Type: jack.Identifier, Value: "x"},
			{Type: jack.Symbol, Value: "="},
			{Type: jack.IntConst, Value: "1"},
			{Type: jack.Symbol, Value: ";"},
		}, false)
	})

	t.Run("Invalid input", func(t *testing.T) {
		test(`"unterminated string`, nil, true)
		test(`/* unterminated comment`, nil, true)
		test("let x = @;", nil, true)
		test("let x = 99999;", nil, true)  // above the 32767 integer constant ceiling
		test("let x = 0123;", nil, true)   // leading zero on a multi-digit lexeme
	})

	t.Run("Integer constant boundaries", func(t *testing.T) {
		test("0;", []jack.Token{
			{Type: jack.IntConst, Value: "0"},
			{Type: jack.Symbol, Value: ";"},
		}, false)
		test("32767;", []jack.Token{
			{Type: jack.IntConst, Value: "32767"},
			{Type: jack.Symbol, Value: ";"},
		}, false)
	})
}

func TestTokenToXML(t *testing.T) {
	test := func(tok jack.Token, expected string) {
		if res := tok.ToXML(); res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
	}

	t.Run("Plain tokens", func(t *testing.T) {
		test(jack.Token{Type: jack.Keyword, Value: "class"}, "<keyword> class </keyword>")
		test(jack.Token{Type: jack.Identifier, Value: "Main"}, "<identifier> Main </identifier>")
		test(jack.Token{Type: jack.IntConst, Value: "42"}, "<integerConstant> 42 </integerConstant>")
	})

	t.Run("Escaped symbols", func(t *testing.T) {
		test(jack.Token{Type: jack.Symbol, Value: "<"}, "<symbol> &lt; </symbol>")
		test(jack.Token{Type: jack.Symbol, Value: ">"}, "<symbol> &gt; </symbol>")
		test(jack.Token{Type: jack.Symbol, Value: "&"}, "<symbol> &amp; </symbol>")
	})
}
