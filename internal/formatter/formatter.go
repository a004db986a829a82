// package formatter renders movies and watchlists as CSV, Markdown and plain text, and writes watchlist exports to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

// WatchlistExport is a watchlist together with its movies.
type WatchlistExport struct {
	Watchlist models.Watchlist
	Movies    []models.WatchlistMovie
}

// NewWatchlistExport builds an export from a /watchlistMovies response.
func NewWatchlistExport(list models.Watchlist, resp *models.WatchlistMoviesResponse) *WatchlistExport {
	if list.Name == "" {
		list.Name = resp.Watchlist.Name
	}
	return &WatchlistExport{Watchlist: list, Movies: resp.Watchlist.Movies}
}

// Slug turns a watchlist name into a file name: lower case, with runs of other characters replaced by "-".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "watchlist"
	}
	return slug
}

func stars(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-min(rating, 5))
}

// MoviesToCSV converts movies to CSV with columns: ID, Title, Year, Rating, Genres
func MoviesToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Year", "Rating", "Genres"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Year(),
			m.Rating(),
			strings.Join(m.GenreNames(), "; "),
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

// ExportToCSV converts a WatchlistExport to CSV format with columns: ID, Title, Rating, Overview
func ExportToCSV(export *WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Rating", "Overview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		rating := ""
		if movie.UserRating > 0 {
			rating = strconv.Itoa(movie.UserRating)
		}
		record := []string{movie.ID, movie.Title, rating, movie.Overview}
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

// ExportToMarkdown converts a WatchlistExport to Markdown format with optional cover image
func ExportToMarkdown(export *WatchlistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Watchlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(export.Movies))

	buf.WriteString("## Movies\n\n")
	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, movie.Title, stars(movie.UserRating))
		if movie.Overview != "" {
			fmt.Fprintf(&buf, "   > %s\n", movie.Overview)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a WatchlistExport to plain text format
func ExportToText(export *WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", export.Watchlist.Name)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, movie.Title, stars(movie.UserRating))
	}

	return buf.Bytes(), nil
}

// MovieToText renders a movie's details as plain text
func MovieToText(movie *models.Movie) []byte {
	var buf bytes.Buffer

	title := movie.Title
	if year := movie.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Rating: %s\n", movie.Rating())
	if runtime := movie.RuntimeString(); runtime != "" {
		fmt.Fprintf(&buf, "Runtime: %s\n", runtime)
	}
	if genres := movie.GenreNames(); len(genres) > 0 {
		fmt.Fprintf(&buf, "Genres: %s\n", strings.Join(genres, ", "))
	}
	if movie.Overview != "" {
		fmt.Fprintf(&buf, "\n%s\n", movie.Overview)
	}
	fmt.Fprintf(&buf, "\n%s\n", shared.MoviePageURL(movie.ID))

	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of watchlist metadata (without movies)
func ToMetadataJSON(list models.Watchlist) ([]byte, error) {
	return shared.MarshalJSON(struct {
		ID         string `json:"_id,omitempty"`
		Name       string `json:"name"`
		MovieCount int    `json:"movieCount"`
	}{list.ID, list.Name, list.MovieCount()}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a watchlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the watchlist's [Slug] as the base filename & creates {base}_movies.csv and {base}_metadata.json
func WriteCSVExport(export *WatchlistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(export.Watchlist.Name)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadata := export.Watchlist
	if metadata.MovieCount() == 0 && len(export.Movies) > 0 {
		metadata.Movies = nil
		for _, m := range export.Movies {
			metadata.Movies = append(metadata.Movies, []byte(strconv.Quote(m.ID)))
		}
	}
	metadataJSON, err := ToMetadataJSON(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a watchlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the watchlist's [Slug]. When withCover is set, the first movie's
// poster is downloaded as cover.jpg; a failed download is logged to stderr and skipped.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *WatchlistExport, outputDir string, withCover bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(export.Watchlist.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL := coverURL(export); withCover && imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

func coverURL(export *WatchlistExport) string {
	for _, m := range export.Movies {
		if url := (models.Movie{PosterPath: m.PosterPath}).PosterURL(); url != "" {
			return url
		}
	}
	return ""
}

// WriteTextExport exports a watchlist to plain text format.
//
// Defaults to {slug}_movies.txt as the filename.
func WriteTextExport(export *WatchlistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_movies.txt", Slug(export.Watchlist.Name))
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
