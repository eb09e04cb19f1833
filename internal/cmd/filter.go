package cmd

import (
	"github.com/ezerfernandes/mdcodemod/internal/rewrite"
	"github.com/gobwas/glob"
)

// langFilter returns a predicate matching tags against any of the glob
// patterns.
func langFilter(patterns []string) (rewrite.Predicate, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}

		globs = append(globs, g)
	}

	return func(lang string) bool {
		for _, g := range globs {
			if g.Match(lang) {
				return true
			}
		}

		return false
	}, nil
}
