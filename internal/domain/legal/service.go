// Package legal implements the rule-based legal research operations: topic
// answers for direct questions and keyword search over the case-law corpus.
package legal

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// QueryDisclaimer accompanies every legal query answer.
const QueryDisclaimer = "This information is provided for general guidance only and does not constitute " +
	"legal advice. For advice specific to your situation, please consult with a " +
	"qualified attorney."

// ruleConfidence is the fixed confidence of rule-based answers. The rules
// match on topic vocabulary only, so the tier is deliberately modest.
const ruleConfidence = 0.6

// Relevance weights for case-law keyword matches.
const (
	relevanceTitle    = 0.3
	relevanceSummary  = 0.2
	relevanceKeywords = 0.5
)

// defaultCaseLimit bounds case-law result sets when the caller does not.
const defaultCaseLimit = 10

// legalTopics are the recognized areas of law, checked as substrings of the
// lowercased question.
var legalTopics = []string{
	"contract", "tort", "criminal", "property", "constitutional",
	"administrative", "family", "corporate", "intellectual property",
	"tax", "employment", "immigration", "environmental", "bankruptcy",
}

// topicAnswers maps the topics that have a canned answer. Topics without an
// entry fall through to the generic response.
var topicAnswers = map[string]string{
	"contract": "Contract law involves legally binding agreements between parties. Key elements include offer, acceptance, consideration, and intention to create legal relations.",
	"tort":     "Tort law deals with civil wrongs that cause harm or injury to another person. Common torts include negligence, defamation, and trespass.",
	"criminal": "Criminal law addresses behaviors considered harmful to society as a whole. Crimes are typically prosecuted by the state rather than individuals.",
}

const genericAnswer = "Your legal question involves general legal principles. For specific advice, please consult an attorney in your jurisdiction."

// QueryInput is a direct legal question.
type QueryInput struct {
	Question     string
	Jurisdiction string
}

// QueryResult is the answer to a legal question.
type QueryResult struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Disclaimer string   `json:"disclaimer"`
	Confidence float64  `json:"confidence"`
}

// CaseSearchInput is a case-law search request.
type CaseSearchInput struct {
	Keywords     []string
	Jurisdiction string
	// YearRange optionally filters to [start, end] inclusive.
	YearRange []int
	Limit     int
}

// CaseResult is one scored case-law hit.
type CaseResult struct {
	Title     string  `json:"title"`
	Court     string  `json:"court"`
	Year      int     `json:"year"`
	Summary   string  `json:"summary"`
	Relevance float64 `json:"relevance"`
	URL       string  `json:"url,omitempty"`
}

// Service answers legal questions and searches the case-law corpus.
type Service struct {
	db  *sql.DB
	log *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Query answers a legal question from the topic rule set. The answer carries
// a jurisdiction caveat when one is named.
func (s *Service) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	topics := extractTopics(in.Question)
	answer := genericAnswer
	for _, topic := range topics {
		if a, ok := topicAnswers[topic]; ok {
			answer = a
			break
		}
	}

	if in.Jurisdiction != "" {
		answer += fmt.Sprintf("\n\nNote that legal systems may vary by jurisdiction. The information above may not fully apply to %s.", in.Jurisdiction)
	}

	s.log.Info("legal query answered",
		zap.Strings("topics", topics),
		zap.String("jurisdiction", in.Jurisdiction))

	return &QueryResult{
		Answer:     answer,
		Sources:    []string{"Legal Knowledge Base"},
		Disclaimer: QueryDisclaimer,
		Confidence: ruleConfidence,
	}, nil
}

// SearchCaseLaw scores every corpus case against the query keywords and
// returns matches in descending relevance order.
func (s *Service) SearchCaseLaw(ctx context.Context, in CaseSearchInput) ([]CaseResult, error) {
	if len(in.Keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultCaseLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, court, year, jurisdiction, summary, keywords, url
		FROM case_law`)
	if err != nil {
		return nil, fmt.Errorf("query case_law: %w", err)
	}
	defer rows.Close()

	results := make([]CaseResult, 0)
	for rows.Next() {
		var title, court, jurisdiction, summary, keywords, url string
		var year int
		if err := rows.Scan(&title, &court, &year, &jurisdiction, &summary, &keywords, &url); err != nil {
			return nil, fmt.Errorf("scan case_law: %w", err)
		}

		if !jurisdictionMatches(in.Jurisdiction, jurisdiction) {
			continue
		}
		if len(in.YearRange) == 2 && (year < in.YearRange[0] || year > in.YearRange[1]) {
			continue
		}

		relevance := scoreCase(in.Keywords, title, summary, strings.Split(keywords, ","))
		if relevance <= 0 {
			continue
		}
		results = append(results, CaseResult{
			Title:     title,
			Court:     court,
			Year:      year,
			Summary:   summary,
			Relevance: relevance,
			URL:       url,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scoreCase accumulates per-keyword weights and caps the total at 1.0.
func scoreCase(queryKeywords []string, title, summary string, caseKeywords []string) float64 {
	titleLower := strings.ToLower(title)
	summaryLower := strings.ToLower(summary)

	var relevance float64
	for _, kw := range queryKeywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(titleLower, k) {
			relevance += relevanceTitle
		}
		if strings.Contains(summaryLower, k) {
			relevance += relevanceSummary
		}
		for _, ck := range caseKeywords {
			if strings.Contains(strings.ToLower(strings.TrimSpace(ck)), k) {
				relevance += relevanceKeywords
				break
			}
		}
	}
	if relevance > 1.0 {
		relevance = 1.0
	}
	return relevance
}

// jurisdictionMatches treats empty and "any" as wildcards.
func jurisdictionMatches(query, caseJurisdiction string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || q == "any" {
		return true
	}
	return q == strings.ToLower(caseJurisdiction)
}

// extractTopics returns the recognized legal topics present in the question,
// in the canonical topic order.
func extractTopics(question string) []string {
	text := strings.ToLower(question)
	var found []string
	for _, topic := range legalTopics {
		if strings.Contains(text, topic) {
			found = append(found, topic)
		}
	}
	return found
}
