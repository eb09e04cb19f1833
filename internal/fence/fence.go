// Package fence lists the fenced code blocks of a Markdown document as a
// CommonMark parser sees them.
package fence

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var reInfo = regexp.MustCompile(`^\s*(\S+)\s*(.*?)\s*$`)

// Block is a fenced code block. Attrs is the info string after the tag and
// Indent the width of the opening fence's indentation. StartLine is the line
// of the opening fence and EndLine the line of the closing one.
type Block struct {
	Lang      string
	Attrs     string
	Indent    int
	StartLine int
	EndLine   int
}

type Blocks []*Block

// Parse returns all fenced code blocks in source in document order.
func Parse(source []byte) (Blocks, error) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks Blocks

	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb := asFencedCodeBlock(node, entering)
		if fcb == nil {
			return ast.WalkContinue, nil
		}

		blocks = append(blocks, extractBlock(fcb, source))

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

func asFencedCodeBlock(node ast.Node, entering bool) *ast.FencedCodeBlock {
	if entering || node.Kind() != ast.KindFencedCodeBlock {
		return nil
	}

	if fcb, ok := node.(*ast.FencedCodeBlock); ok {
		return fcb
	}

	return nil
}

func extractBlock(fcb *ast.FencedCodeBlock, source []byte) *Block {
	block := new(Block)

	if fcb.Info != nil {
		block.Lang, block.Attrs = parseInfo(fcb.Info.Text(source))
		block.Indent = indentAt(source, fcb.Info.Segment.Start)
	}

	block.StartLine, block.EndLine = extractLines(fcb, source)

	return block
}

func extractLines(fcb *ast.FencedCodeBlock, source []byte) (int, int) {
	var startLine, endLine int

	if fcb.Info != nil {
		startLine = lineAt(source, fcb.Info.Segment.Start)
	} else {
		lines := fcb.Lines()
		if lines.Len() > 0 {
			startLine = lineAt(source, lines.At(0).Start) - 1
		}
	}

	lines := fcb.Lines()
	if lines.Len() > 0 {
		endLine = lineAt(source, lines.At(lines.Len()-1).Stop)
	} else if startLine > 0 {
		endLine = startLine + 1
	}

	return startLine, endLine
}

func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}

	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// indentAt returns the leading whitespace width of the line holding offset.
func indentAt(source []byte, offset int) int {
	line := source[bytes.LastIndexByte(source[:offset], '\n')+1 : offset]

	return len(line) - len(bytes.TrimLeft(line, " \t"))
}

func parseInfo(info []byte) (string, string) {
	all := reInfo.FindSubmatch(info)
	if all == nil {
		return "", ""
	}

	return string(all[1]), string(all[2])
}
