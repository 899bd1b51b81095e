package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sokinpui/blocktoggle/internal/fs"
	"github.com/sokinpui/blocktoggle/model"
)

const (
	stateDirName  = ".blocktoggle"
	stateFileName = "state"
	backupDirName = "backups"
	opFields      = 4
)

// Operation records one rewritten file.
type Operation struct {
	Path        string
	Backup      string
	Kind        model.Kind
	ContentHash string // SHA256 of the file content after the rewrite
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp  int64
	Operations []Operation
}

// State represents the entire state file.
type State struct {
	History      []HistoryEntry
	CurrentIndex int
}

// Manager handles the lifecycle of the state file.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
}

// New creates and loads a state manager rooted at rootDir.
func New(rootDir string) (*Manager, error) {
	stateDir := filepath.Join(rootDir, stateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func emptyState() *State {
	return &State{CurrentIndex: -1, History: []HistoryEntry{}}
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = emptyState()
			return nil
		}
		return fmt.Errorf("could not read state file: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")
	if len(blocks) == 0 || strings.TrimSpace(blocks[0]) == "" {
		m.state = emptyState()
		return nil
	}

	// First block is the current index.
	index, err := strconv.Atoi(strings.TrimSpace(blocks[0]))
	if err != nil {
		return fmt.Errorf("invalid state file: could not parse current index: %w", err)
	}
	m.state = &State{CurrentIndex: index, History: []HistoryEntry{}}

	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		ts, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid state file: could not parse timestamp from '%s': %w", lines[0], err)
		}

		entry := HistoryEntry{Timestamp: ts}
		opLines := lines[1:]
		if len(opLines)%opFields != 0 {
			return fmt.Errorf("invalid state file: incomplete operation record")
		}
		for i := 0; i < len(opLines); i += opFields {
			entry.Operations = append(entry.Operations, Operation{
				Kind:        model.Kind(opLines[i]),
				Path:        opLines[i+1],
				Backup:      opLines[i+2],
				ContentHash: opLines[i+3],
			})
		}
		m.state.History = append(m.state.History, entry)
	}

	if m.state.CurrentIndex >= len(m.state.History) {
		m.state.CurrentIndex = len(m.state.History) - 1
	}
	return nil
}

func (m *Manager) save() error {
	blocks := []string{strconv.Itoa(m.state.CurrentIndex)}

	for _, entry := range m.state.History {
		var b strings.Builder
		b.WriteString(strconv.FormatInt(entry.Timestamp, 10))
		for _, op := range entry.Operations {
			for _, field := range []string{string(op.Kind), op.Path, op.Backup, op.ContentHash} {
				b.WriteString("\n")
				b.WriteString(field)
			}
		}
		blocks = append(blocks, b.String())
	}

	content := strings.Join(blocks, "\n\n") + "\n"
	if err := fs.WriteAtomic(m.statePath, content); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	return nil
}

// Write adds a new set of operations to the history, discarding any entries
// that were undone. Each operation's backup is copied into the state
// directory so later runs, which overwrite the shared backup file, cannot
// change what this entry restores.
func (m *Manager) Write(operations []Operation) error {
	if len(operations) == 0 {
		return nil
	}
	if m.state.CurrentIndex < len(m.state.History)-1 {
		for _, entry := range m.state.History[m.state.CurrentIndex+1:] {
			m.removeSnapshots(entry)
		}
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}

	sort.Slice(operations, func(i, j int) bool {
		return operations[i].Path < operations[j].Path
	})
	now := time.Now().UTC()
	for i := range operations {
		snap, err := m.snapshot(operations[i], now)
		if err != nil {
			return err
		}
		operations[i].Backup = snap
	}

	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp:  now.Unix(),
		Operations: operations,
	})
	m.state.CurrentIndex++
	return m.save()
}

// snapshot copies op's backup to a file owned by this history entry.
func (m *Manager) snapshot(op Operation, now time.Time) (string, error) {
	content, err := fs.ReadText(op.Backup)
	if err != nil {
		return "", fmt.Errorf("could not snapshot backup: %w", err)
	}
	dir := filepath.Join(m.StateDir, backupDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory: %w", err)
	}
	name := fmt.Sprintf("%d-%s", now.UnixNano(), fs.HashString(op.Path)[:16])
	path := filepath.Join(dir, name)
	if err := fs.WriteAtomic(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// removeSnapshots deletes the backup copies of a discarded entry.
func (m *Manager) removeSnapshots(entry HistoryEntry) {
	dir := filepath.Join(m.StateDir, backupDirName)
	for _, op := range entry.Operations {
		if filepath.Dir(op.Backup) == dir {
			os.Remove(op.Backup)
		}
	}
}

// LastOperations returns the operations the next undo restores, without
// moving the history pointer.
func (m *Manager) LastOperations() []Operation {
	if m.state.CurrentIndex < 0 {
		return nil
	}
	return m.state.History[m.state.CurrentIndex].Operations
}

// MarkUndone moves the history pointer back past the last entry.
func (m *Manager) MarkUndone() error {
	if m.state.CurrentIndex < 0 {
		return nil
	}
	m.state.CurrentIndex--
	return m.save()
}

// CreateOperations builds history records for files that were rewritten and
// backed up.
func CreateOperations(kind model.Kind, files []model.FileResult) []Operation {
	var ops []Operation
	for _, f := range files {
		if !f.Changed || f.Backup == "" {
			continue
		}
		hash, err := fs.GetFileSHA256(f.Path)
		if err != nil {
			// Without a hash the undo safety check would always fail.
			continue
		}
		ops = append(ops, Operation{
			Path:        f.Path,
			Backup:      f.Backup,
			Kind:        kind,
			ContentHash: hash,
		})
	}
	return ops
}
