// Package journal appends liquidity operation outcomes to a JSONL file for
// audit and debugging. Entries are append-only; nothing reads them back on
// the hot path.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry records one submitted liquidity operation and its outcome.
type Entry struct {
	Timestamp    string `json:"timestamp"`
	AccountID    string `json:"account_id"`
	Operation    string `json:"operation"`
	PairAddress  string `json:"pair_address,omitempty"`
	TokenASymbol string `json:"token_a_symbol,omitempty"`
	TokenAAmount string `json:"token_a_amount,omitempty"`
	TokenBSymbol string `json:"token_b_symbol,omitempty"`
	TokenBAmount string `json:"token_b_amount,omitempty"`
	LPAmount     string `json:"lp_amount,omitempty"`
	Success      bool   `json:"success"`
	ErrCode      string `json:"err_code,omitempty"`
}

// Writer appends entries to a JSONL file.
type Writer struct {
	path string
	mu   sync.Mutex
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Record appends one entry, stamping it with the current UTC time when the
// caller left Timestamp empty.
func (w *Writer) Record(entry Entry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	dir := filepath.Dir(w.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write journal newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}
