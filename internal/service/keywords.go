package service

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 10

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "had": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "will": {}, "been": {},
	"were": {}, "their": {}, "there": {}, "which": {}, "into": {},
	"more": {}, "when": {}, "than": {}, "them": {}, "then": {}, "its": {},
	"also": {}, "some": {}, "what": {}, "about": {}, "would": {},
	"these": {}, "other": {}, "over": {}, "such": {}, "only": {},
}

// ExtractKeywords returns the top frequency-ranked terms from text, with
// stopwords and tokens of two characters or fewer excluded. A crude but
// deterministic relevance signal; used for filtering, not ranking.
func ExtractKeywords(text string) []string {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	// Ties broken alphabetically to keep output deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}

func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// contentCategory pairs a topic tag with the seed keywords that signal it.
type contentCategory struct {
	Name  string
	Seeds []string
}

// The category vocabulary is fixed: downstream retrieval filters depend on
// these exact tags staying stable.
var contentCategories = []contentCategory{
	{Name: "project_management", Seeds: []string{"project", "milestone", "scope", "deliverable", "plan", "roadmap", "launch"}},
	{Name: "task_management", Seeds: []string{"task", "assigned", "assignee", "todo", "backlog", "priority", "due"}},
	{Name: "team_collaboration", Seeds: []string{"team", "member", "collaboration", "meeting", "discussion", "comment", "review"}},
	{Name: "performance", Seeds: []string{"performance", "velocity", "throughput", "productivity", "metric", "completed", "progress"}},
	{Name: "risk_assessment", Seeds: []string{"risk", "blocker", "blocked", "issue", "delay", "overdue", "critical"}},
	{Name: "timeline", Seeds: []string{"timeline", "deadline", "schedule", "date", "quarter", "week", "month"}},
	{Name: "resource_allocation", Seeds: []string{"resource", "allocation", "capacity", "budget", "workload", "availability", "hours"}},
}

// CategorizeContent assigns zero or more topic tags to text. A category
// applies when at least two of its seed keywords appear in the lowercased
// text. Multiple categories may apply to one chunk.
func CategorizeContent(text string) []string {
	lowered := strings.ToLower(text)

	var tags []string
	for _, cat := range contentCategories {
		hits := 0
		for _, seed := range cat.Seeds {
			if strings.Contains(lowered, seed) {
				hits++
			}
		}
		if hits >= 2 {
			tags = append(tags, cat.Name)
		}
	}
	return tags
}
