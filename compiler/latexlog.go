package compiler

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
)

const maxLogErrorLines = 10

// ScrapeLogErrors extracts user-facing error lines from an engine log file:
// lines starting with the "!" marker or containing "error" in any case. Only
// the first ten matches are kept, in original order. Any read failure yields
// no lines; log enrichment is best effort, never a hard failure.
func ScrapeLogErrors(logPath string) []string {
	file, err := os.OpenFile(logPath, os.O_RDONLY, 0666)
	if err != nil {
		return nil
	}
	defer file.Close()

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil
	}
	defer m.Unmap()

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(m))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "!") || strings.Contains(strings.ToLower(line), "error") {
			lines = append(lines, strings.TrimSpace(line))
			if len(lines) == maxLogErrorLines {
				break
			}
		}
	}
	return lines
}
