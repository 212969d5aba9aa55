// Package query matches user input against chapter titles and other names.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrNoMatch is returned when no chapter matches a query.
var ErrNoMatch = errors.New("no chapter matches")

// Chapter resolves q to a chapter index. q is either a chapter number,
// counted from 1, or part of a title. Among fuzzy title matches the one
// closest to q wins, ties going to the earlier chapter.
func Chapter(chapters []overlay.Chapter, q string) (int, error) {
	q = sanitize(q)
	if q == "" {
		return 0, fmt.Errorf("%w: empty query", ErrNoMatch)
	}

	if n, err := strconv.Atoi(q); err == nil {
		if n < 1 || n > len(chapters) {
			return 0, fmt.Errorf("chapter %d out of range 1-%d", n, len(chapters))
		}
		return n - 1, nil
	}

	titles := lo.Map(chapters, func(c overlay.Chapter, _ int) string {
		return c.Title
	})

	ranks := fuzzy.RankFindNormalizedFold(q, titles)
	if len(ranks) == 0 {
		if closest, ok := Suggest(q, titles).Get(); ok {
			return 0, fmt.Errorf("%w %q, did you mean %q?", ErrNoMatch, q, closest)
		}
		return 0, fmt.Errorf("%w %q", ErrNoMatch, q)
	}

	best := lo.MinBy(ranks, func(a, b fuzzy.Rank) bool {
		da := levenshtein.Distance(q, sanitize(a.Target))
		db := levenshtein.Distance(q, sanitize(b.Target))
		if da != db {
			return da < db
		}
		return a.OriginalIndex < b.OriginalIndex
	})
	return best.OriginalIndex, nil
}

// Suggest returns the candidate with the smallest edit distance to q.
func Suggest(q string, candidates []string) mo.Option[string] {
	if len(candidates) == 0 {
		return mo.None[string]()
	}

	q = sanitize(q)
	return mo.Some(lo.MinBy(candidates, func(a, b string) bool {
		return levenshtein.Distance(q, sanitize(a)) < levenshtein.Distance(q, sanitize(b))
	}))
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
