package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"github.com/hmny-labs/n2t-toolchain/pkg/asm"
	"github.com/hmny-labs/n2t-toolchain/pkg/vm"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode'like) language tailored for use with the Hack computer arch.

Accepts either a single '.vm' file or a directory containing multiple '.vm' files. When
given a directory the bootstrap code is prepended automatically, since a directory is
assumed to hold a complete, runnable program (one of its classes is expected to define
'Sys.init'); a single file is translated as-is, with no bootstrap prepended.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	WithArg(cli.NewArg("target", "The '.vm' file or directory of '.vm' files to translate")).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	target := args[0]

	info, err := os.Stat(target)
	if err != nil {
		fmt.Printf("ERROR: Unable to access input path: %s\n", err)
		return -1
	}

	// Collects every '.vm' file to be translated: a single path when 'target' names a file
	// directly, every sibling '.vm' file inside 'target' when it names a directory instead.
	var sources []string
	var outputPath string
	var bootstrap bool
	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			fmt.Printf("ERROR: Unable to read input directory: %s\n", err)
			return -1
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".vm") {
				sources = append(sources, path.Join(target, entry.Name()))
			}
		}
		base := filepath.Base(filepath.Clean(target))
		outputPath = path.Join(target, fmt.Sprintf("%s.asm", base))
		bootstrap = true
	} else {
		sources = []string{target}
		outputPath = strings.TrimSuffix(target, ".vm") + ".asm"
		bootstrap = false
	}

	if len(sources) == 0 {
		fmt.Printf("ERROR: No '.vm' source file found under '%s'\n", target)
		return -1
	}

	output, err := os.Create(outputPath)
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	// Allocates a 'vm.Program' struct to save all the parsed translation unit
	// (the .vm files) that will be parsed and lowered independently and then
	// sent to the codegen phases (that will create a monolithic compiled output).
	program := vm.Program{}

	for _, input := range sources {
		content, err := os.ReadFile(input)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		// Instantiate a parser for the Vm program
		parser := vm.NewParser(bytes.NewReader(content))
		// Parses the input file content and extract an AST (as a 'vm.Module') from it.
		program[path.Base(input)], err = parser.Parse()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
			return -1
		}
	}

	// Instantiate a lowerer to convert the program from Vm to Asm
	lowerer := vm.NewLowerer(program)

	// Directory mode translates a complete, runnable program: the bootstrap sequence sets
	// the Stack Pointer to its base location (256) and calls 'Sys.init', using it as the
	// enclosing function context for that call's return label. Single file mode
	// is assumed to be elaborated alongside other modules later on, so it's skipped.
	var bootstrapCode asm.Program
	if bootstrap {
		bootstrapCode, err = lowerer.Bootstrap()
		if err != nil {
			fmt.Printf("ERROR: Unable to generate bootstrap code: %s\n", err)
			return -1
		}
	}

	// Lowers the vm.Program to an in-memory/IR representation of its Asm counterpart 'asm.Program'.
	asmProgram, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}
	asmProgram = append(bootstrapCode, asmProgram...)

	// Now, instantiates a code generator for the Asm (compiled) program
	codegen := asm.NewCodeGenerator(asmProgram)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return 0
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
