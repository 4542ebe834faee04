package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messySheet = "section,question,options\n" +
	"Sleep , Insomnia ,Yes:10 | No:0\n" +
	",,\n"

func TestFormatSheets(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     fmtOptions
		wantErr  string
		contains []string
		rewrites bool
	}{
		{
			name:     "print",
			contains: []string{"Section;Question;Options\nSleep;Insomnia;Yes:10|No:0\n"},
		},
		{
			name:     "check",
			opts:     fmtOptions{check: true},
			wantErr:  "1 of 4 sheets need formatting",
			contains: []string{"sleep.csv needs formatting", "1 of 4 sheets need formatting"},
		},
		{
			name:     "diff",
			opts:     fmtOptions{diff: true},
			contains: []string{"- section,question,options", "+ Section;Question;Options"},
		},
		{
			name:     "write",
			opts:     fmtOptions{write: true},
			contains: []string{"Formatted", "Formatted 1 of 4 sheets"},
			rewrites: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupWorkspace(t)
			sleep := filepath.Join(root, "specs", "medical", "sleep.csv")
			writeFile(t, sleep, messySheet)

			a, buf := newTestApp(t, root, "console")
			err := a.formatSheets(ctx, nil, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}

			data, err := os.ReadFile(sleep)
			require.NoError(t, err)
			if tt.rewrites {
				assert.Equal(t, "Section;Question;Options\nSleep;Insomnia;Yes:10|No:0\n", string(data))
			} else {
				assert.Equal(t, messySheet, string(data), "sheet left untouched")
			}
		})
	}
}

func TestFormatSheetsArgs(t *testing.T) {
	ctx := context.Background()
	root := setupWorkspace(t)

	t.Run("single file already formatted", func(t *testing.T) {
		a, buf := newTestApp(t, root, "console")
		a.cfg.Verbose = true
		falls := filepath.Join(root, "specs", "medical", "falls.csv")
		require.NoError(t, a.formatSheets(ctx, []string{falls}, fmtOptions{check: true}))
		assert.Contains(t, buf.String(), "already formatted")
	})

	t.Run("directory", func(t *testing.T) {
		a, buf := newTestApp(t, root, "console")
		dir := filepath.Join(root, "specs", "vulnerability")
		require.NoError(t, a.formatSheets(ctx, []string{dir}, fmtOptions{check: true}))
		assert.Contains(t, buf.String(), "All 2 sheets already formatted")
	})

	t.Run("missing path", func(t *testing.T) {
		a, _ := newTestApp(t, root, "console")
		err := a.formatSheets(ctx, []string{filepath.Join(root, "nope.csv")}, fmtOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot access")
	})

	t.Run("empty directory", func(t *testing.T) {
		a, _ := newTestApp(t, root, "console")
		err := a.formatSheets(ctx, []string{t.TempDir()}, fmtOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no sheet to format")
	})
}
