package cost

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type ActivityRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Command      string    `json:"command"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	TokensInput  int       `json:"tokens_input"`
	TokensOutput int       `json:"tokens_output"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMs   int64     `json:"duration_ms"`
}

type BudgetStatus struct {
	IsExceeded   bool
	PercentUsed  float64
	TodayTotal   float64
	Estimated    float64
	Limit        float64
	IsWarning    bool
	WarningLevel int // 50, 75, 90
}

// Manager keeps the usage history in a JSON file and enforces the daily budget.
// It is safe for concurrent use within one process.
type Manager struct {
	mu          sync.Mutex
	historyPath string
	budgetDaily float64
	reserved    float64
	now         func() time.Time
}

// DefaultHistoryPath returns $HOME/.contextclue/history.json.
func DefaultHistoryPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".contextclue", "history.json"), nil
}

// NewManager creates a manager writing to historyPath. An empty path means DefaultHistoryPath.
func NewManager(historyPath string, budgetDaily float64) (*Manager, error) {
	if historyPath == "" {
		p, err := DefaultHistoryPath()
		if err != nil {
			return nil, err
		}
		historyPath = p
	}

	if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	return &Manager{
		historyPath: historyPath,
		budgetDaily: budgetDaily,
		now:         time.Now,
	}, nil
}

func (m *Manager) HistoryPath() string {
	return m.historyPath
}

func (m *Manager) BudgetDaily() float64 {
	return m.budgetDaily
}

// SaveActivity saves an activity record
func (m *Manager) SaveActivity(record ActivityRecord) error {
	slog.Debug("saving activity record",
		"command", record.Command,
		"provider", record.Provider,
		"model", record.Model,
		"tokens_input", record.TokensInput,
		"tokens_output", record.TokensOutput,
		"cost_usd", record.CostUSD)

	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.loadHistory()
	if err != nil {
		slog.Warn("activity history unreadable, starting a new one",
			"path", m.historyPath,
			"error", err)
		records = []ActivityRecord{}
	}

	records = append(records, record)
	if err := m.writeHistory(records); err != nil {
		return err
	}

	slog.Debug("activity record saved successfully",
		"total_records", len(records))

	return nil
}

// Prune drops records older than maxAge and returns how many were removed.
func (m *Manager) Prune(maxAge time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.loadHistory()
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-maxAge)
	kept := records[:0]
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := m.writeHistory(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// writeHistory must be called with m.mu held.
func (m *Manager) writeHistory(records []ActivityRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		slog.Error("failed to serialize activity history",
			"error", err)
		return fmt.Errorf("error serializing history: %w", err)
	}

	if err := os.WriteFile(m.historyPath, data, 0644); err != nil {
		slog.Error("failed to write activity history",
			"path", m.historyPath,
			"error", err)
		return fmt.Errorf("error saving history: %w", err)
	}
	return nil
}

// CheckBudget checks if the estimated cost exceeds the daily budget.
// Spend held by ReserveBudget counts towards today's total.
func (m *Manager) CheckBudget(estimatedCost float64) (*BudgetStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.budgetStatus(estimatedCost)
}

// ReserveBudget checks the budget and, when the call fits, holds estimatedCost
// against today's total until release is called. Concurrent callers see each
// other's reservations, so parallel calls cannot jointly pass the limit.
// release is safe to call more than once.
func (m *Manager) ReserveBudget(estimatedCost float64) (*BudgetStatus, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, err := m.budgetStatus(estimatedCost)
	if err != nil {
		return nil, func() {}, err
	}
	if m.budgetDaily <= 0 || status.IsExceeded {
		return status, func() {}, nil
	}

	m.reserved += estimatedCost
	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.reserved -= estimatedCost
		})
	}
	return status, release, nil
}

// budgetStatus must be called with m.mu held.
func (m *Manager) budgetStatus(estimatedCost float64) (*BudgetStatus, error) {
	slog.Debug("checking budget",
		"estimated_cost", estimatedCost,
		"budget_daily", m.budgetDaily,
		"reserved", m.reserved)

	if m.budgetDaily <= 0 {
		slog.Debug("no budget limit configured")
		return &BudgetStatus{}, nil
	}

	spent, err := m.totalSinceLocked("2006-01-02")
	if err != nil {
		slog.Error("failed to get daily total",
			"error", err)
		return nil, err
	}
	todayTotal := spent + m.reserved

	percentUsed := (todayTotal / m.budgetDaily) * 100
	newPercent := ((todayTotal + estimatedCost) / m.budgetDaily) * 100

	status := &BudgetStatus{
		IsExceeded:  newPercent > 100,
		PercentUsed: percentUsed,
		TodayTotal:  todayTotal,
		Estimated:   estimatedCost,
		Limit:       m.budgetDaily,
	}

	switch {
	case percentUsed >= 90:
		status.IsWarning = true
		status.WarningLevel = 90
	case percentUsed >= 75:
		status.IsWarning = true
		status.WarningLevel = 75
	case percentUsed >= 50:
		status.IsWarning = true
		status.WarningLevel = 50
	}

	slog.Debug("budget check completed",
		"today_total", todayTotal,
		"estimated_cost", estimatedCost,
		"percent_used", percentUsed,
		"is_exceeded", status.IsExceeded,
		"is_warning", status.IsWarning)

	return status, nil
}

// GetDailyTotal gets the total spent today
func (m *Manager) GetDailyTotal() (float64, error) {
	return m.totalSince("2006-01-02")
}

// GetMonthlyTotal gets the total spent this month
func (m *Manager) GetMonthlyTotal() (float64, error) {
	return m.totalSince("2006-01")
}

// GetHistory gets all records
func (m *Manager) GetHistory() ([]ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadHistory()
}

func (m *Manager) totalSince(layout string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalSinceLocked(layout)
}

// totalSinceLocked must be called with m.mu held.
func (m *Manager) totalSinceLocked(layout string) (float64, error) {
	records, err := m.loadHistory()
	if err != nil {
		return 0, err
	}

	current := m.now().Format(layout)
	var total float64
	for _, record := range records {
		if record.Timestamp.Format(layout) == current {
			total += record.CostUSD
		}
	}

	return total, nil
}

// loadHistory must be called with m.mu held.
func (m *Manager) loadHistory() ([]ActivityRecord, error) {
	data, err := os.ReadFile(m.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []ActivityRecord{}, nil
		}
		return nil, fmt.Errorf("error reading history: %w", err)
	}

	var records []ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error deserializing history: %w", err)
	}

	return records, nil
}
