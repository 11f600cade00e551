package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"tokenScope/internal/model"
)

// JSONStorage writes indented JSON reports either to a file, replacing its
// contents, or to a stream.
type JSONStorage struct {
	path string
	w    io.Writer
	mu   sync.Mutex
}

// NewJSONFile writes reports to path.
func NewJSONFile(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// NewJSONWriter writes reports to w, one document per call.
func NewJSONWriter(w io.Writer) *JSONStorage {
	return &JSONStorage{w: w}
}

func (s *JSONStorage) PutReport(report model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w != nil {
		return encode(s.w, report)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	return writeAndClose(file, report)
}

// writeAndClose encodes report and returns the close error as well.
func writeAndClose(wc io.WriteCloser, report model.Report) error {
	writer := bufio.NewWriter(wc)
	if err := encode(writer, report); err != nil {
		wc.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		wc.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

func encode(w io.Writer, report model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
