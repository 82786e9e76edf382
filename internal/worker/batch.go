package worker

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadTownsFromFile reads town names from a file (one per line). Blank lines
// and lines starting with "#" are skipped; duplicates are dropped
// case-insensitively, keeping the first spelling.
func ReadTownsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var towns []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			towns = append(towns, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return towns, nil
}
