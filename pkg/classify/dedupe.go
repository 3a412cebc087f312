package classify

import (
	"iter"

	"github.com/crimsonvanitas/brew/pkg/types"
)

// Dedupe yields the first candidate seen for each inode and drops later
// hard links to it. Errors pass through untouched. The seen set belongs to a
// single iteration, so ranging over the result again starts afresh.
func Dedupe(seq iter.Seq2[types.Candidate, error]) iter.Seq2[types.Candidate, error] {
	return func(yield func(types.Candidate, error) bool) {
		seenIDs := map[types.FileID]struct{}{}
		seenPaths := map[string]struct{}{}

		for c, err := range seq {
			if err != nil {
				if !yield(c, err) {
					return
				}
				continue
			}

			if c.HasID {
				if _, dup := seenIDs[c.ID]; dup {
					continue
				}
				seenIDs[c.ID] = struct{}{}
			} else {
				if _, dup := seenPaths[c.Path]; dup {
					continue
				}
				seenPaths[c.Path] = struct{}{}
			}

			if !yield(c, nil) {
				return
			}
		}
	}
}
