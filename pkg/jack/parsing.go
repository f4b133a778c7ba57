package jack

import (
	"fmt"
	"io"
)

// ----------------------------------------------------------------------------
// Jack source reader

// SourceParser adapts an io.Reader of Jack source text to the hand-rolled
// tokenizer/Parser pair, matching the 'NewParser(reader).Parse()' entrypoint shape
// shared with 'pkg/asm' and 'pkg/vm'.
type SourceParser struct{ reader io.Reader }

// NewParser initializes a SourceParser over the given io.Reader.
func NewParser(r io.Reader) SourceParser {
	return SourceParser{reader: r}
}

// Parse reads the whole input, tokenizes it and runs it through the recursive
// descent Parser, returning the resulting jack.Class.
func (sp *SourceParser) Parse() (Class, error) {
	content, err := io.ReadAll(sp.reader)
	if err != nil {
		return Class{}, fmt.Errorf("cannot read from 'io.Reader': %w", err)
	}

	parser, err := NewJackParser(string(content))
	if err != nil {
		return Class{}, err
	}

	class, _, err := parser.Parse(false)
	if err != nil {
		return Class{}, fmt.Errorf("error parsing Jack source: %w", err)
	}
	return class, nil
}
