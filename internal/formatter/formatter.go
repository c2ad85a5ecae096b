// package formatter provides functions to export catalog data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/shared"
)

// Formats lists the names accepted by [Render].
var Formats = []string{"json", "csv", "markdown", "txt"}

// CatalogExport is one user's catalog ready for rendering.
type CatalogExport struct {
	User    models.User             `json:"user"`
	Entries []models.UserMovieEntry `json:"entries"`
}

// Render dispatches to the exporter for format.
func Render(format string, export *CatalogExport) ([]byte, error) {
	switch format {
	case "json":
		return ExportToJSON(export)
	case "csv":
		return ExportToCSV(export)
	case "markdown", "md":
		return ExportToMarkdown(export)
	case "txt", "text":
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %v)", shared.ErrInvalidArgument, format, Formats)
	}
}

// ExportToCSV converts a CatalogExport to CSV format with columns: MovieID, Name, Status, Rating, Poster
func ExportToCSV(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"MovieID", "Name", "Status", "Rating", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		record := []string{
			strconv.FormatInt(entry.MovieID, 10),
			entry.Name,
			entry.Status.String(),
			ratingString(entry.Rating, ""),
			entry.Poster,
		}
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

// ExportToMarkdown converts a CatalogExport to Markdown with a poster thumbnail per entry
func ExportToMarkdown(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s's Movies\n\n", export.User.UserName)
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(export.Entries))

	if len(export.Entries) == 0 {
		buf.WriteString("_No movies yet._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Poster | Movie | Status | Rating |\n")
	buf.WriteString("|---|--------|-------|--------|--------|\n")
	for i, entry := range export.Entries {
		fmt.Fprintf(&buf, "| %d | ![%s](%s) | %s | %s | %s |\n",
			i+1, entry.Name, entry.Poster, entry.Name, statusString(entry.Status), ratingString(entry.Rating, "-"))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CatalogExport to plain text format
func ExportToText(export *CatalogExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "User: %s (ID: %d)\n", export.User.UserName, export.User.ID)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Entries))

	for i, entry := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s [%s] rating: %s\n", i+1, entry.Name, statusString(entry.Status), ratingString(entry.Rating, "-"))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the export as indented JSON
func ExportToJSON(export *CatalogExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders the export and writes it to path.
//
// Defaults to {user_id}_movies.{format} as the filename.
func WriteExport(export *CatalogExport, format, path string) (string, error) {
	data, err := Render(format, export)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("%d_movies.%s", export.User.ID, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func statusString(s models.WatchStatus) string {
	if s == "" {
		return "-"
	}
	return s.String()
}

func ratingString(r *int, empty string) string {
	if r == nil {
		return empty
	}
	return strconv.Itoa(*r)
}
