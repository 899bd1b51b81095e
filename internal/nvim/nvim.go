package nvim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neovim/go-client/nvim"
)

// AddressEnv names the environment variable holding a running Neovim's
// listen address.
const AddressEnv = "NVIM_LISTEN_ADDRESS"

// ErrNoAddress is returned when no Neovim address is configured.
var ErrNoAddress = errors.New("no running Neovim instance ($" + AddressEnv + " is not set)")

// Manager handles the connection to the user's running Neovim instance.
type Manager struct {
	nvim *nvim.Nvim
}

// New connects to the Neovim instance listening on addr, or on
// $NVIM_LISTEN_ADDRESS when addr is empty.
func New(addr string) (*Manager, error) {
	if addr == "" {
		addr = os.Getenv(AddressEnv)
	}
	if addr == "" {
		return nil, ErrNoAddress
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Manager{nvim: v}, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// processSequentially is a generic helper function to run a set of jobs sequentially.
func processSequentially[T any](
	items []T,
	processFn func(item T) (path string, success bool),
	progressCb func(int),
) (succeeded, failed []string) {
	for i, item := range items {
		path, success := processFn(item)
		if success {
			succeeded = append(succeeded, path)
		} else {
			failed = append(failed, path)
		}
		if progressCb != nil {
			progressCb(i + 1)
		}
	}
	return succeeded, failed
}

// ReloadFiles re-reads every listed file that is open in a buffer. Files
// that are not loaded count as reloaded.
func (m *Manager) ReloadFiles(paths []string, progressCb func(int)) (reloaded, failed []string) {
	return processSequentially(paths, func(p string) (string, bool) {
		return p, m.reloadBuffer(p)
	}, progressCb)
}

func (m *Manager) reloadBuffer(filePath string) bool {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}

	var bufnr int
	if err := m.nvim.Call("bufnr", &bufnr, absPath); err != nil {
		return false
	}
	if bufnr < 0 {
		return true
	}

	b := m.nvim.NewBatch()
	b.Command(fmt.Sprintf("call nvim_buf_call(%d, {-> execute('silent! edit!')})", bufnr))
	return b.Execute() == nil
}
