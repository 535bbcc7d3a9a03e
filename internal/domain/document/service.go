// Package document implements upload, retrieval and rule-based analysis of
// legal documents.
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/pkg/uuid"
)

// ErrNotFound is returned when a document does not exist or belongs to
// another user. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("document not found")

// ErrMissingTitle rejects uploads without a title.
var ErrMissingTitle = errors.New("document title is required")

// summaryLimit caps the rule-based summary length in bytes.
const summaryLimit = 500

// maxEntities bounds the entity list in an analysis result.
const maxEntities = 20

// Document is a stored upload.
type Document struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"file_size"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"upload_date"`
}

// UploadInput carries a new document.
type UploadInput struct {
	UserID      string
	Title       string
	Description string
	Filename    string
	ContentType string
	Content     string
}

// Entity is a named reference found in the document text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Analysis is the rule-based analysis result.
type Analysis struct {
	DocumentID      string   `json:"document_id"`
	AnalysisDate    string   `json:"analysis_date"`
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	Entities        []Entity `json:"entities"`
	RiskAssessment  string   `json:"risk_assessment"`
	Recommendations []string `json:"recommendations"`
}

// Canned analysis content. Real insight extraction needs an LLM pass; until
// that lands the endpoint returns fixed guidance alongside the text-derived
// summary and entities.
var (
	analysisKeyPoints = []string{
		"Contract terms and conditions",
		"Legal obligations and responsibilities",
		"Important dates and deadlines",
	}
	analysisRecommendations = []string{
		"Review clause 3.2 for potential issues",
		"Consider adding additional protection clauses",
		"Verify compliance with local regulations",
	}
)

const analysisRisk = "Medium"

// Entity extraction patterns, a cheap stand-in for NER. Ordered so the more
// specific patterns claim their text first.
var entityPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"MONEY", regexp.MustCompile(`\$[0-9][0-9,]*(?:\.[0-9]{2})?`)},
	{"DATE", regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+[0-9]{1,2},\s+[0-9]{4}\b`)},
	{"DATE", regexp.MustCompile(`\b[0-9]{4}-[0-9]{2}-[0-9]{2}\b`)},
	{"ORG", regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*\s+(?:Inc\.|LLC|Ltd\.|Corp\.|Corporation|Company)`)},
}

// Service owns document persistence and analysis.
type Service struct {
	db  *sql.DB
	log *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Upload stores a new document and returns its record.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrMissingTitle
	}

	doc := &Document{
		ID:          uuid.NewV7().String(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		SizeBytes:   int64(len(in.Content)),
		Status:      "uploaded",
		UploadedAt:  time.Now().UTC(),
	}
	if doc.Filename == "" {
		doc.Filename = in.Title + ".txt"
	}
	if doc.ContentType == "" {
		doc.ContentType = "text/plain"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, title, description, filename, content_type, content, size_bytes, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Title, doc.Description, doc.Filename, doc.ContentType,
		in.Content, doc.SizeBytes, doc.Status, doc.UploadedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	s.log.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("user_id", doc.UserID),
		zap.Int64("size_bytes", doc.SizeBytes))

	return doc, nil
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, filename, content_type, size_bytes, status, uploaded_at
		FROM documents
		WHERE user_id = ?
		ORDER BY uploaded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// Get returns one document owned by userID.
func (s *Service) Get(ctx context.Context, userID, documentID string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, filename, content_type, size_bytes, status, uploaded_at
		FROM documents
		WHERE id = ? AND user_id = ?`,
		documentID, userID,
	)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// Analyze runs the rule-based analysis over the stored document content.
func (s *Service) Analyze(ctx context.Context, userID, documentID string) (*Analysis, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM documents WHERE id = ? AND user_id = ?`,
		documentID, userID,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	s.log.Info("document analyzed",
		zap.String("document_id", documentID),
		zap.String("user_id", userID))

	return &Analysis{
		DocumentID:      documentID,
		AnalysisDate:    time.Now().UTC().Format(time.RFC3339),
		Summary:         summarize(content),
		KeyPoints:       analysisKeyPoints,
		Entities:        extractEntities(content),
		RiskAssessment:  analysisRisk,
		Recommendations: analysisRecommendations,
	}, nil
}

// summarize truncates the content to the first summaryLimit bytes.
func summarize(content string) string {
	text := strings.TrimSpace(content)
	if text == "" {
		return "This is a mock analysis of the document. In a real implementation, this would contain AI-generated insights about the legal document."
	}
	if len(text) > summaryLimit {
		return text[:summaryLimit] + "..."
	}
	return text
}

// extractEntities collects pattern matches until maxEntities is reached.
func extractEntities(content string) []Entity {
	entities := make([]Entity, 0, maxEntities)
	seen := make(map[string]bool)
	for _, p := range entityPatterns {
		for _, match := range p.re.FindAllString(content, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			entities = append(entities, Entity{Text: match, Label: p.label})
			if len(entities) == maxEntities {
				return entities
			}
		}
	}
	return entities
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*Document, error) {
	var d Document
	var uploaded string
	if err := r.Scan(&d.ID, &d.UserID, &d.Title, &d.Description, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Status, &uploaded); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, uploaded); err == nil {
		d.UploadedAt = t
	}
	return &d, nil
}
