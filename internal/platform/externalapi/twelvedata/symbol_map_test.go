package twelvedata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolMap_Resolve(t *testing.T) {
	t.Parallel()

	sm := NewSymbolMap()

	tests := []struct {
		ticker  string
		wantSym string
		wantMIC string
	}{
		{"7203.T", "7203", "XJPX"},
		{"7203.t", "7203", "XJPX"},
		{"VOD.L", "VOD", "XLON"},
		{"RY.TO", "RY", "XTSE"},
		{"SAP.DE", "SAP", "XETR"},
		{"0700.HK", "0700", "XHKG"},
		{"MC.PA", "MC", "XPAR"},
		{"BHP.AX", "BHP", "XASX"},
		{"AAPL", "AAPL", ""},
		{"BRK.B", "BRK.B", ""},
		{".T", ".T", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ticker, func(t *testing.T) {
			t.Parallel()

			sym, mic := sm.Resolve(tt.ticker)
			assert.Equal(t, tt.wantSym, sym)
			assert.Equal(t, tt.wantMIC, mic)
		})
	}
}

func TestLoadSymbolMap(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses built-in table", func(t *testing.T) {
		t.Parallel()

		sm, err := LoadSymbolMap("")
		require.NoError(t, err)
		_, mic := sm.Resolve("7203.T")
		assert.Equal(t, "XJPX", mic)
	})

	t.Run("file overrides, adds and removes suffixes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "symbols.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`exchanges:
  ".T": XTKS
  si: xses
  ".L": ""
`), 0o600))

		sm, err := LoadSymbolMap(path)
		require.NoError(t, err)

		_, mic := sm.Resolve("7203.T")
		assert.Equal(t, "XTKS", mic)
		sym, mic := sm.Resolve("D05.SI")
		assert.Equal(t, "D05", sym)
		assert.Equal(t, "XSES", mic)
		sym, mic = sm.Resolve("VOD.L")
		assert.Equal(t, "VOD.L", sym)
		assert.Empty(t, mic)
		// built-in entries not named in the file are kept
		_, mic = sm.Resolve("SAP.DE")
		assert.Equal(t, "XETR", mic)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadSymbolMap(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("exchanges: [unclosed"), 0o600))

		_, err := LoadSymbolMap(path)
		assert.Error(t, err)
	})
}
