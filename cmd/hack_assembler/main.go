package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"
	"github.com/hmny-labs/n2t-toolchain/pkg/asm"
	"github.com/hmny-labs/n2t-toolchain/pkg/hack"
)

var Description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The process
involves parsing the assembly code, resolving symbols, and generating machine code.
`, "\n", " ")

var HackAssembler = cli.New(Description).
	WithOption(cli.NewOption("f", "The assembler (.asm) file to be compiled").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	source, ok := options["f"]
	if !ok || source == "" {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	if !strings.HasSuffix(source, ".asm") {
		fmt.Printf("ERROR: Input file '%s' must have a '.asm' extension\n", source)
		return -1
	}

	input, err := os.ReadFile(source)
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	// Instantiate a parser for the Asm program
	parser := asm.NewParser(bytes.NewReader(input))
	// Parses the input file content and extract an AST (as a 'asm.Program') from it.
	asmProgram, err := parser.Parse()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	// Dumps a pretty-printed, round-tripped copy of the parsed program as the '.clean.asm'
	// intermediate: comments, label declarations and formatting quirks of the original source
	// are gone, only the bare A and C instructions survive, one per line, exactly as the Code
	// Generator understood them.
	cleanPath := strings.TrimSuffix(source, ".asm") + ".clean.asm"
	cleanFile, err := os.Create(cleanPath)
	if err != nil {
		fmt.Printf("ERROR: Unable to open intermediate output file: %s\n", err)
		return -1
	}
	defer cleanFile.Close()

	prettyPrinter := asm.NewCodeGenerator(asmProgram)
	cleaned, err := prettyPrinter.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to produce intermediate '.clean.asm' output: %s\n", err)
		return -1
	}
	for i, line := range cleaned {
		if _, isLabel := asmProgram[i].(asm.LabelDecl); isLabel {
			continue
		}
		cleanFile.Write([]byte(fmt.Sprintf("%s\n", line)))
	}

	outputPath := strings.TrimSuffix(source, ".asm") + ".hack"
	output, err := os.Create(outputPath)
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	// Instantiate a lowerer to convert the program from Asm to Hack
	lowerer := asm.NewLowerer(asmProgram)
	// Lowers the asm.Program to an in-memory/IR representation of its Hack counterpart 'hack.Program'.
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Now, instantiates a code generator for the Hack (compiled) program
	codegen := hack.NewCodeGenerator(hackProgram, table)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass:\n\t %s", err)
		return -1
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return 0
}

func main() { os.Exit(HackAssembler.Run(os.Args, os.Stdout)) }
