package cmd

import (
	"github.com/ezerfernandes/mdcodemod/internal/fence"
	"github.com/ezerfernandes/mdcodemod/internal/rewrite"
)

const (
	stateQualifies = "qualifies"
	stateIgnored   = "ignored"
	stateUnmatched = "unmatched"
)

type blockState struct {
	block *fence.Block
	state string
}

// walk lists the fenced code blocks of source and tells which of them the
// rewriter would transform. A tagged block the parser sees but the
// rewriter's pattern does not match is unmatched, with the reason when one
// is known.
func walk(source []byte, filter rewrite.Predicate) ([]*blockState, error) {
	blocks, err := fence.Parse(source)
	if err != nil {
		return nil, err
	}

	matched := make(map[int]string)
	for _, match := range rewrite.Scan(string(source)) {
		matched[match.Line] = match.Lang
	}

	states := make([]*blockState, 0, len(blocks))

	for _, block := range blocks {
		state := unmatched(block)

		if len(block.Lang) == 0 {
			state = stateIgnored
		} else if lang, ok := matched[block.StartLine]; ok && lang == block.Lang {
			state = stateIgnored

			if filter(block.Lang) {
				state = stateQualifies
			}
		}

		states = append(states, &blockState{block: block, state: state})
	}

	return states, nil
}

func unmatched(block *fence.Block) string {
	switch {
	case block.Indent > 0:
		return stateUnmatched + ": indented"
	case len(block.Attrs) != 0:
		return stateUnmatched + ": attributes"
	default:
		return stateUnmatched
	}
}
