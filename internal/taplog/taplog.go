// Package taplog loads recorded tap timestamps from text files.
package taplog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads one millisecond timestamp per line. Blank lines and lines
// starting with '#' are skipped.
func Load(r io.Reader) ([]int64, error) {
	var taps []int64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ts, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timestamp %q", lineNo, line)
		}
		taps = append(taps, ts)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(taps) == 0 {
		return nil, fmt.Errorf("tap log is empty")
	}
	return taps, nil
}

// LoadFile reads a tap log from the provided file path.
func LoadFile(path string) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only tap log.
			_ = cerr
		}
	}()
	return Load(file)
}

// Write emits taps in the format accepted by Load.
func Write(w io.Writer, taps []int64) error {
	writer := bufio.NewWriter(w)
	for _, ts := range taps {
		if _, err := fmt.Fprintln(writer, ts); err != nil {
			return fmt.Errorf("failed to write tap log: %w", err)
		}
	}
	return writer.Flush()
}
