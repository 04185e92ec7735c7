// backtest はローカルの SQLite をキャッシュとしてバックテストを1回実行し、結果をJSONで出力します。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
