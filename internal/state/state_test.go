package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/blocktoggle/model"
)

// backupOp writes a backup holding content and returns an operation for it.
func backupOp(t *testing.T, dir, name, content string, kind model.Kind) Operation {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path+".bak", []byte(content), 0644))
	return Operation{Path: path, Backup: path + ".bak", Kind: kind, ContentHash: "h-" + name}
}

func TestManager_WriteAndUndo(t *testing.T) {
	root := t.TempDir()

	m, err := New(root)
	require.NoError(t, err)
	assert.Empty(t, m.LastOperations())

	first := []Operation{backupOp(t, root, "b.py", "b v1\n", "usd")}
	require.NoError(t, m.Write(first))
	second := []Operation{
		backupOp(t, root, "z.py", "z v2\n", "urdf"),
		backupOp(t, root, "b.py", "b v2\n", "urdf"),
	}
	require.NoError(t, m.Write(second))

	// A fresh manager reads the persisted history.
	m, err = New(root)
	require.NoError(t, err)

	ops := m.LastOperations()
	require.Len(t, ops, 2)
	assert.Equal(t, filepath.Join(root, "b.py"), ops[0].Path, "operations are stored sorted by path")
	assert.Equal(t, model.Kind("urdf"), ops[0].Kind)
	assert.Equal(t, ops, m.LastOperations(), "peeking does not move the pointer")
	require.NoError(t, m.MarkUndone())

	ops = m.LastOperations()
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(root, "b.py"), ops[0].Path)
	require.NoError(t, m.MarkUndone())

	assert.Empty(t, m.LastOperations())
	require.NoError(t, m.MarkUndone())
	assert.Empty(t, m.LastOperations())
}

func TestManager_WriteSnapshotsBackups(t *testing.T) {
	root := t.TempDir()
	m, err := New(root)
	require.NoError(t, err)

	require.NoError(t, m.Write([]Operation{backupOp(t, root, "robots.py", "first\n", "usd")}))
	// The next run overwrites the shared backup file.
	require.NoError(t, m.Write([]Operation{backupOp(t, root, "robots.py", "second\n", "urdf")}))

	ops := m.LastOperations()
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(m.StateDir, backupDirName), filepath.Dir(ops[0].Backup))
	data, err := os.ReadFile(ops[0].Backup)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	require.NoError(t, m.MarkUndone())
	ops = m.LastOperations()
	require.Len(t, ops, 1)
	data, err = os.ReadFile(ops[0].Backup)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(data))
}

func TestManager_WriteDiscardsUndoneEntries(t *testing.T) {
	root := t.TempDir()
	m, err := New(root)
	require.NoError(t, err)

	require.NoError(t, m.Write([]Operation{backupOp(t, root, "a", "1", "usd")}))
	require.NoError(t, m.Write([]Operation{backupOp(t, root, "b", "2", "usd")}))
	discarded := m.LastOperations()[0].Backup
	require.NoError(t, m.MarkUndone())
	require.NoError(t, m.Write([]Operation{backupOp(t, root, "c", "3", "urdf")}))

	assert.Len(t, m.state.History, 2)
	assert.NoFileExists(t, discarded)
	ops := m.LastOperations()
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(root, "c"), ops[0].Path)
}

func TestManager_WriteMissingBackup(t *testing.T) {
	m, err := New(t.TempDir())
	require.NoError(t, err)

	err = m.Write([]Operation{{Path: "/nope", Backup: "/nope.bak", Kind: "usd", ContentHash: "x"}})
	assert.Error(t, err)
	assert.Empty(t, m.LastOperations())
}

func TestManager_InvalidStateFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, stateDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("0\n\n123\nusd\n/a\n"), 0644))

	_, err := New(root)
	assert.Error(t, err)
}

func TestCreateOperations(t *testing.T) {
	dir := t.TempDir()
	changed := filepath.Join(dir, "changed.py")
	require.NoError(t, os.WriteFile(changed, []byte("x\n"), 0644))

	ops := CreateOperations("usd", []model.FileResult{
		{Path: changed, Backup: changed + ".bak", Changed: true},
		{Path: filepath.Join(dir, "same.py"), Changed: false},
		{Path: filepath.Join(dir, "nobackup.py"), Changed: true},
	})
	require.Len(t, ops, 1)
	assert.Equal(t, changed, ops[0].Path)
	assert.Equal(t, model.Kind("usd"), ops[0].Kind)
	assert.Len(t, ops[0].ContentHash, 64)
}
