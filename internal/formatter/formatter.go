// package formatter renders generated playlists to various formats (plain text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/seedmix/internal/playlist"
)

// ToText renders the playlist as newline-joined "Title - Artist" lines,
// the canonical wire format of the service.
func ToText(result *playlist.Result) []byte {
	return []byte(result.Text() + "\n")
}

// ToCSV converts a playlist result to CSV with columns: Position, Title, Artist.
func ToCSV(result *playlist.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range result.Songs {
		record := []string{strconv.Itoa(i + 1), song.Title, song.Artist}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown converts a playlist result to a Markdown document with
// fulfillment metadata and a numbered track list.
func ToMarkdown(result *playlist.Result, title string) []byte {
	var buf bytes.Buffer

	if title == "" {
		title = "Generated Playlist"
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d of %d requested\n", result.Count, result.TargetTotal))
	if result.Warning != "" {
		buf.WriteString(fmt.Sprintf("**Warning**: %s\n", result.Warning))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, song := range result.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Title, song.Artist))
	}

	return buf.Bytes()
}

// WriteExport writes a playlist result to a file in the requested format.
// Format defaults to plain text; returns the written path.
func WriteExport(result *playlist.Result, format, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}

	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ToCSV(result)
		if err != nil {
			return "", err
		}
	case "markdown":
		data = ToMarkdown(result, "")
	case "text", "":
		data = ToText(result)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	return path, nil
}
