package twelvedata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultExchanges は銘柄コードの接尾辞から取引所の MIC コードへの対応表です。
var defaultExchanges = map[string]string{
	".T":  "XJPX",
	".L":  "XLON",
	".TO": "XTSE",
	".DE": "XETR",
	".HK": "XHKG",
	".PA": "XPAR",
	".AX": "XASX",
}

// SymbolMap は "7203.T" のような銘柄コードを Twelve Data の symbol と mic_code に変換します。
type SymbolMap struct {
	exchanges map[string]string
}

// symbolMapFile は上書き用 YAML ファイルの形式です。
//
//	exchanges:
//	  ".T": XJPX
//	  ".SI": XSES
type symbolMapFile struct {
	Exchanges map[string]string `yaml:"exchanges"`
}

// NewSymbolMap は組み込みの対応表で SymbolMap を生成します。
func NewSymbolMap() *SymbolMap {
	m := make(map[string]string, len(defaultExchanges))
	for k, v := range defaultExchanges {
		m[k] = v
	}
	return &SymbolMap{exchanges: m}
}

// LoadSymbolMap は組み込みの対応表に path の YAML を重ねた SymbolMap を返します。
// path が空の場合は組み込みの対応表のみを使用します。
func LoadSymbolMap(path string) (*SymbolMap, error) {
	sm := NewSymbolMap()
	if path == "" {
		return sm, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbol map: %w", err)
	}
	var f symbolMapFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse symbol map %s: %w", path, err)
	}
	for suffix, mic := range f.Exchanges {
		suffix = strings.ToUpper(strings.TrimSpace(suffix))
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		mic = strings.ToUpper(strings.TrimSpace(mic))
		if mic == "" {
			delete(sm.exchanges, suffix)
			continue
		}
		sm.exchanges[suffix] = mic
	}
	return sm, nil
}

// Resolve は銘柄コードを API に渡す symbol と mic_code に分解します。
// 対応する接尾辞が無い場合はコードをそのまま返し、mic は空になります。
func (sm *SymbolMap) Resolve(ticker string) (symbol, mic string) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	i := strings.LastIndex(ticker, ".")
	if i <= 0 {
		return ticker, ""
	}
	if m, ok := sm.exchanges[ticker[i:]]; ok {
		return ticker[:i], m
	}
	return ticker, ""
}
