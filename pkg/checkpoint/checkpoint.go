package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dascraper/pkg/logger"
)

// Checkpoint is the resumable state of a search session: the query, the
// continuation cursor to resume from, and the deviations already seen.
type Checkpoint struct {
	Query        string            `json:"query"`
	Cursor       string            `json:"cursor"`
	PagesFetched int               `json:"pages_fetched"`
	Seen         map[uint64]string `json:"seen"` // deviation id -> title
	TotalSeen    int               `json:"total_seen"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Version      int               `json:"version"`
}

// Manager handles checkpoint persistence for one query.
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager rooted at dir. Each query
// gets its own file so concurrent sessions do not clobber each other.
func NewManager(dir, query string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(dir, fmt.Sprintf("%s.checkpoint.json", sanitizeName(query))),
		logger:         logger.GetLogger(),
	}, nil
}

// sanitizeName maps a query onto a safe file name component.
func sanitizeName(query string) string {
	safe := make([]rune, 0, len(query))
	for _, r := range query {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	if len(safe) == 0 {
		return "default"
	}
	return string(safe)
}

// Create creates and saves a fresh checkpoint for a query.
func (m *Manager) Create(query string) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Query:     query,
		Seen:      make(map[uint64]string),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"query": query,
		"path":  m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint. A missing file returns (nil, nil).
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.Seen == nil {
		checkpoint.Seen = make(map[uint64]string)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"query":      checkpoint.Query,
		"total_seen": checkpoint.TotalSeen,
		"cursor":     checkpoint.Cursor,
		"updated_at": checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save writes the checkpoint to disk atomically: encode into a temp
// file, sync, then rename over the previous version.
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"query":      checkpoint.Query,
		"total_seen": checkpoint.TotalSeen,
		"cursor":     checkpoint.Cursor,
	})

	return nil
}

// Delete removes the checkpoint file.
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// UpdateProgress records a fetched page's cursor and saves.
func (m *Manager) UpdateProgress(checkpoint *Checkpoint, cursor string) error {
	checkpoint.Cursor = cursor
	checkpoint.PagesFetched++
	return m.Save(checkpoint)
}

// RecordSeen marks a deviation as seen. The checkpoint is not saved;
// call Save or UpdateProgress after a batch.
func (checkpoint *Checkpoint) RecordSeen(id uint64, title string) {
	if _, exists := checkpoint.Seen[id]; exists {
		return
	}
	checkpoint.Seen[id] = title
	checkpoint.TotalSeen++
}

// HasSeen reports whether a deviation was already recorded.
func (checkpoint *Checkpoint) HasSeen(id uint64) bool {
	_, exists := checkpoint.Seen[id]
	return exists
}
