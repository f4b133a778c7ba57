package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hmny-labs/n2t-toolchain/pkg/jack"
	"github.com/hmny-labs/n2t-toolchain/pkg/vm"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Compiler compiles programs (composed of multiple classes/files) written in
the Jack language into VM modules that can be further elaborated. The Jack language
is a higher-level OOP language tailored for use with the Hack computer architecture.
A single '.jack' file or a directory of '.jack' files can be given as 'target'; the
'-m' flag picks between tokenizing ('t'), parse-tree dumping ('p') and full VM
generation ('g', the default).
`, "\n", " ")

var JackCompiler = cli.New(Description).
	WithArg(cli.NewArg("target", "The '.jack' file or directory of '.jack' files to compile")).
	WithOption(cli.NewOption("m", "Compiler mode: 't' tokenize, 'p' parse tree, 'g' generate VM code (default)").
		WithType(cli.TypeString)).
	WithAction(Handler)

const (
	modeTokenize  = "t"
	modeParseTree = "p"
	modeGenerate  = "g"
)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	target := args[0]

	mode := options["m"]
	if mode == "" {
		mode = modeGenerate
	}
	if mode != modeTokenize && mode != modeParseTree && mode != modeGenerate {
		fmt.Printf("ERROR: Invalid '-m' mode '%s', expected one of 't', 'p', 'g'\n", mode)
		return -1
	}

	// The aggregation of every Translation Unit (TU), i.e. every '.jack' file to be
	// compiled: either the single 'target' file, or every '.jack' file found in it.
	TUs := []string{}
	filepath.Walk(target, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".jack" {
			return nil
		}
		TUs = append(TUs, path)
		return nil
	})
	if len(TUs) == 0 {
		fmt.Printf("ERROR: No '.jack' source files found under '%s'\n", target)
		return -1
	}

	switch mode {
	case modeTokenize:
		return runTokenize(TUs)
	case modeParseTree:
		return runParseTree(TUs)
	default:
		return runGenerate(TUs)
	}
}

// runTokenize drives the '-m t' diagnostic mode: dumps every Token produced for each
// TU as a '<tokens>...</tokens>' XML document, without building any AST at all.
func runTokenize(TUs []string) int {
	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		tokens, err := jack.NewTokenizer(string(content)).Tokenize()
		if err != nil {
			fmt.Printf("ERROR: Unable to tokenize '%s': %s\n", tu, err)
			return -1
		}

		var sb strings.Builder
		sb.WriteString("<tokens>\n")
		for _, tok := range tokens {
			sb.WriteString(tok.ToXML())
			sb.WriteString("\n")
		}
		sb.WriteString("</tokens>\n")

		if err := writeSibling(tu, "T.xml", sb.String()); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
	}
	return 0
}

// runParseTree drives the '-m p' diagnostic mode: parses each TU and dumps the
// resulting generic parse tree, built alongside the AST by the recursive descent Parser.
func runParseTree(TUs []string) int {
	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		parser, err := jack.NewJackParser(string(content))
		if err != nil {
			fmt.Printf("ERROR: Unable to tokenize '%s': %s\n", tu, err)
			return -1
		}

		_, tree, err := parser.Parse(true)
		if err != nil {
			fmt.Printf("ERROR: Unable to parse '%s': %s\n", tu, err)
			return -1
		}

		if err := writeSibling(tu, "P.xml", tree.ToXML(0)+"\n"); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
	}
	return 0
}

// runGenerate drives the default '-m g' mode: parses every TU into a jack.Program,
// lowers it to vm.Program and emits one '.vm' file per original '.jack' input.
func runGenerate(TUs []string) int {
	program := jack.Program{}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		parser, err := jack.NewJackParser(string(content))
		if err != nil {
			fmt.Printf("ERROR: Unable to tokenize '%s': %s\n", tu, err)
			return -1
		}

		class, _, err := parser.Parse(false)
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass for '%s': %s\n", tu, err)
			return -1
		}

		filename, extension := path.Base(tu), path.Ext(tu)
		program[strings.TrimSuffix(filename, extension)] = class
	}

	lowerer := jack.NewLowerer(program)
	vmProgram, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	codegen := vm.NewCodeGenerator(vmProgram)
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	for _, tu := range TUs {
		filename, extension := path.Base(tu), path.Ext(tu)
		module, ok := compiled[strings.TrimSuffix(filename, extension)]
		if !ok {
			fmt.Printf("ERROR: Unable to compile module for class file '%s'\n", tu)
			return -1
		}

		var sb strings.Builder
		for _, ops := range module {
			sb.WriteString(fmt.Sprintf("%s\n", ops))
		}

		if err := writeSibling(tu, "vm", sb.String()); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
	}

	return 0
}

// writeSibling writes 'content' to a file obtained by stripping tu's '.jack'
// extension and appending 'suffix' ("T.xml", "P.xml" or "vm", the latter preceded
// by a dot to match the nand2tetris naming convention for each diagnostic mode).
func writeSibling(tu string, suffix string, content string) error {
	base := strings.TrimSuffix(tu, path.Ext(tu))
	outPath := base + suffix
	if suffix == "vm" {
		outPath = base + ".vm"
	}

	output, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	defer output.Close()

	_, err = output.WriteString(content)
	return err
}

func main() { os.Exit(JackCompiler.Run(os.Args, os.Stdout)) }
