// Package state keeps the audit history of an output directory.
// It tracks descriptor and config hashes so an unchanged audit can be
// answered from the previous report instead of being run again.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tuannvm/fileaudit/internal/types"
)

// MaxEntries bounds the number of audits kept in the history
const MaxEntries = 50

// StateFile is the history location relative to the output directory
const StateFile = ".fileaudit/history.json"

// History is the persisted audit history.
type History struct {
	// InputHash is the hash of the descriptors of the current audit
	InputHash string `json:"input_hash"`

	// ConfigHash is the hash of the settings that shape a report
	ConfigHash string `json:"config_hash"`

	// Entries holds completed audits, oldest first
	Entries []Entry `json:"entries"`
}

// Entry records one completed audit.
type Entry struct {
	AuditID            string    `json:"audit_id"`
	ReportPath         string    `json:"report_path"`
	ReportHash         string    `json:"report_hash"`
	Format             string    `json:"format"`
	InputHash          string    `json:"input_hash"`
	ConfigHash         string    `json:"config_hash"`
	TotalFiles         int       `json:"total_files"`
	RiskLevel          string    `json:"risk_level"`
	TotalExecutionTime int64     `json:"total_execution_time"`
	CompletedAt        time.Time `json:"completed_at"`
}

// Manager handles history operations.
type Manager struct {
	outputDir string
	state     *History
	statePath string
}

// NewManager creates a new history manager for the given output directory.
func NewManager(outputDir string) *Manager {
	return &Manager{
		outputDir: outputDir,
		statePath: filepath.Join(outputDir, StateFile),
		state:     &History{},
	}
}

// Path returns the history file location.
func (m *Manager) Path() string { return m.statePath }

// Load loads the history from disk. A missing file is a fresh start.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &History{}
			return nil
		}
		return fmt.Errorf("failed to read audit history: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("failed to parse audit history: %w", err)
	}
	m.state = &h
	return nil
}

// Save persists the history to disk.
func (m *Manager) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit history: %w", err)
	}

	if err := os.WriteFile(m.statePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write audit history: %w", err)
	}
	return nil
}

// UpdateInputHash computes and stores the hash of the descriptors.
func (m *Manager) UpdateInputHash(files []types.FileDescriptor) {
	m.state.InputHash = HashDescriptors(files)
}

// UpdateConfigHash computes and stores a hash of the settings in v.
func (m *Manager) UpdateConfigHash(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config for hashing: %w", err)
	}
	m.state.ConfigHash = hashBytes(data)
	return nil
}

// Record appends a completed audit whose report was written to reportPath.
func (m *Manager) Record(e Entry) error {
	hash, err := hashFile(e.ReportPath)
	if err != nil {
		return fmt.Errorf("failed to hash report file: %w", err)
	}
	e.ReportHash = hash
	e.InputHash = m.state.InputHash
	e.ConfigHash = m.state.ConfigHash
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now().UTC()
	}

	m.state.Entries = append(m.state.Entries, e)
	if extra := len(m.state.Entries) - MaxEntries; extra > 0 {
		m.state.Entries = m.state.Entries[extra:]
	}
	return nil
}

// Last returns the most recent audit.
func (m *Manager) Last() (Entry, bool) {
	if len(m.state.Entries) == 0 {
		return Entry{}, false
	}
	return m.state.Entries[len(m.state.Entries)-1], true
}

// Entries returns the recorded audits, newest first.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.state.Entries))
	for i, e := range m.state.Entries {
		out[len(out)-1-i] = e
	}
	return out
}

// ShouldReaudit reports whether the current inputs need a new audit.
// When it returns false, the returned entry's report is still valid.
func (m *Manager) ShouldReaudit() (bool, string, Entry) {
	last, ok := m.Last()
	if !ok {
		return true, "no previous audit recorded", Entry{}
	}

	// Check if report file exists
	if _, err := os.Stat(last.ReportPath); os.IsNotExist(err) {
		return true, "report file does not exist", last
	}

	// Check if report changed externally
	currentHash, err := hashFile(last.ReportPath)
	if err != nil {
		return true, fmt.Sprintf("failed to hash current report: %v", err), last
	}
	if currentHash != last.ReportHash {
		return true, "report file was modified externally", last
	}

	if m.state.InputHash != last.InputHash {
		return true, "input files changed", last
	}

	if m.state.ConfigHash != last.ConfigHash {
		return true, "configuration changed", last
	}

	return false, "up-to-date", last
}

// Clear removes all history.
func (m *Manager) Clear() error {
	m.state = &History{}
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HashDescriptors hashes name, size and modification time of every
// descriptor in input order. Order drives file IDs and batching, so a
// reordered input hashes differently.
func HashDescriptors(files []types.FileDescriptor) string {
	lines := make([]string, len(files))
	for i, f := range files {
		lines[i] = f.Name + "\x00" + strconv.FormatInt(f.Size, 10) + "\x00" + strconv.FormatInt(f.LastModified.UnixNano(), 10)
	}
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{0}) // separator
	}
	return hex.EncodeToString(h.Sum(nil))
}

// hashFile computes the SHA-256 hash of a single file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashBytes computes the SHA-256 hash of bytes.
func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
