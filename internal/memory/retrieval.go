package memory

import (
	"sort"
	"strings"
)

// errorBoost is the fixed score bonus for error-kind entries with at
// least one keyword match, so past failures surface ahead of routine
// results of equal relevance.
const errorBoost = 5

// RetrieveOptions filters retrieval by entry kind.
type RetrieveOptions struct {
	// Kind, if set, restricts results to that kind.
	Kind string
	// ExcludeKind, if set, drops entries of that kind.
	ExcludeKind string
}

// scored pairs an entry with its keyword score for ranking.
type scored struct {
	entry Entry
	score int
}

// Retrieve returns up to topK entries from an agent's log ranked by
// keyword relevance to the query. The query is split on whitespace into
// unique keywords; an entry's score is the total substring match count
// across keywords, with a fixed bonus for matching error entries. When
// nothing scores above zero the most recent topK entries are returned
// instead, so prompts never go out empty-handed while memory exists.
// Once anything matches, only matching entries are returned; zero-score
// entries never pad the result, so a sparse match set comes back with
// fewer than topK entries rather than diluted with noise.
func (s *Store) Retrieve(agent, query string, topK int, opts RetrieveOptions) ([]Entry, error) {
	if topK <= 0 {
		return nil, nil
	}

	entries, err := s.listAll(agent)
	if err != nil {
		return nil, err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if opts.ExcludeKind != "" && e.Kind == opts.ExcludeKind {
			continue
		}
		filtered = append(filtered, e)
	}

	keywords := uniqueKeywords(query)
	ranked := make([]scored, 0, len(filtered))
	anyMatch := false
	for _, e := range filtered {
		sc := scoreEntry(e, keywords)
		if sc > 0 {
			anyMatch = true
		}
		ranked = append(ranked, scored{entry: e, score: sc})
	}

	if !anyMatch {
		// Recency fallback: newest topK.
		recent := make([]Entry, len(filtered))
		copy(recent, filtered)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].ID > recent[j].ID
		})
		if len(recent) > topK {
			recent = recent[:topK]
		}
		return recent, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var results []Entry
	for _, r := range ranked {
		if r.score == 0 {
			continue
		}
		results = append(results, r.entry)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

// scoreEntry counts substring matches of each keyword in the entry
// content, case-insensitive, plus the error boost when applicable.
func scoreEntry(e Entry, keywords []string) int {
	content := strings.ToLower(e.Content)
	score := 0
	for _, kw := range keywords {
		score += strings.Count(content, kw)
	}
	if score > 0 && e.Kind == KindError {
		score += errorBoost
	}
	return score
}

// uniqueKeywords splits the query on whitespace and lowercases,
// deduplicating.
func uniqueKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	var keywords []string
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		keywords = append(keywords, f)
	}
	return keywords
}
