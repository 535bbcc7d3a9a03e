package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/lexabot/lexa/internal/domain/chat"
)

// statsSource is the slice of chat.ConversationStore the dashboard needs.
type statsSource interface {
	Snapshot() chat.Stats
}

// availabilitySource answers which providers are currently usable.
type availabilitySource interface {
	AvailableProviders() []string
}

// DashboardHandler aggregates usage statistics for the dashboard page.
type DashboardHandler struct {
	stats     statsSource
	providers availabilitySource
	db        *sql.DB
}

func NewDashboardHandler(stats statsSource, providers availabilitySource, db *sql.DB) *DashboardHandler {
	return &DashboardHandler{stats: stats, providers: providers, db: db}
}

type dashboardStats struct {
	TotalConversations int            `json:"totalConversations"`
	DocumentsAnalyzed  int            `json:"documentsAnalyzed"`
	QuestionsAnswered  int            `json:"questionsAnswered"`
	SystemUptime       string         `json:"systemUptime"`
	ProviderUsage      map[string]int `json:"providerUsage"`
	RecentActivity     recentActivity `json:"recentActivity"`
	SystemStatus       systemStatus   `json:"systemStatus"`
	AvailableProviders []string       `json:"availableProviders"`
}

type recentActivity struct {
	Chats     int `json:"chats"`
	Documents int `json:"documents"`
	Queries   int `json:"queries"`
}

type systemStatus struct {
	APIOnline         bool `json:"apiOnline"`
	AIModelsReady     bool `json:"aiModelsReady"`
	DatabaseConnected bool `json:"databaseConnected"`
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	snap := h.stats.Snapshot()
	available := h.providers.AvailableProviders()
	documents := h.countDocuments(r.Context())

	writeJSON(w, http.StatusOK, dashboardStats{
		TotalConversations: snap.Conversations,
		DocumentsAnalyzed:  documents,
		QuestionsAnswered:  snap.UserMessages,
		SystemUptime:       "99.9%",
		ProviderUsage:      snap.ProviderUsage,
		RecentActivity: recentActivity{
			Chats:     minInt(snap.Conversations, 5),
			Documents: minInt(documents, 3),
			Queries:   minInt(snap.UserMessages, 15),
		},
		SystemStatus: systemStatus{
			APIOnline:         true,
			AIModelsReady:     len(available) > 0,
			DatabaseConnected: h.db.PingContext(r.Context()) == nil,
		},
		AvailableProviders: available,
	})
}

// countDocuments returns the total stored documents; a query error reports 0
// rather than failing the whole dashboard.
func (h *DashboardHandler) countDocuments(ctx context.Context) int {
	var n int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
