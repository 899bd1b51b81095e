package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/blocktoggle/model"
)

var summary = model.Summary{
	Mode: "usd",
	Files: []model.FileResult{
		{
			Path:       "robots.py",
			Regions:    2,
			KindCounts: map[model.Kind]int{"usd": 2, "urdf": 2},
			Directives: []string{"UNITREE_MODEL_DIR"},
			Changed:    true,
			Warnings:   []string{"something odd"},
		},
	},
	Warnings: []string{"unitree_model not found"},
	Failed:   []string{"other.py: file not found"},
}

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestMarkdown(t *testing.T) {
	md := Markdown(summary, now)

	assert.Contains(t, md, "- Mode: `usd`")
	assert.Contains(t, md, "2026-01-02T03:04:05Z")
	assert.Contains(t, md, "| `robots.py` | yes | 2 | urdf: 2, usd: 2 | UNITREE_MODEL_DIR |")
	assert.Contains(t, md, "- `robots.py`: something odd")
	assert.Contains(t, md, "- unitree_model not found")
	assert.Contains(t, md, "## Failed")
	assert.NotContains(t, md, "Dry run")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, Write(mdPath, summary, now))
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# blocktoggle report")

	htmlPath := filepath.Join(dir, "report.html")
	require.NoError(t, Write(htmlPath, summary, now))
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>blocktoggle report</h1>")
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "<code>robots.py</code>")
}
