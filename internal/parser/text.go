package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docfind/internal/doctree"
)

// TextParser handles plain text files.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Each paragraph becomes a <p>.
	var body strings.Builder
	writeParagraphs(&body, strings.Join(lines, "\n"))

	return newDocument(strings.TrimSuffix(filename, ".txt"), body.String())
}
