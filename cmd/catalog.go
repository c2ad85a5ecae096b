package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/movieweb/internal/catalog"
	"github.com/desertthunder/movieweb/internal/formatter"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/tasks"
	"github.com/urfave/cli/v3"
)

func parseStatus(s string) (models.WatchStatus, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseWatchStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (r *Runner) loadExport(ctx context.Context, c *catalog.Manager, userID int64, status models.WatchStatus) (*formatter.CatalogExport, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var entries []models.UserMovieEntry
	if status == "" {
		entries, err = c.ListUserMovies(ctx, userID)
	} else {
		entries, err = c.ListUserMoviesByStatus(ctx, userID, status)
	}
	if err != nil {
		return nil, err
	}
	return &formatter.CatalogExport{User: *user, Entries: entries}, nil
}

// CatalogList renders a user's catalog to the output in the requested format.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	status, err := parseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	export, err := r.loadExport(ctx, c, cmd.Int64("user"), status)
	if err != nil {
		return err
	}

	data, err := formatter.Render(cmd.String("format"), export)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CatalogExport writes a user's full catalog to a file.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	export, err := r.loadExport(ctx, c, cmd.Int64("user"), "")
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "user", export.User.ID, "entries", len(export.Entries), "path", path)
	return r.writePlain("✓ Exported %d movies to %s\n", len(export.Entries), path)
}

// CatalogAdd looks up a title and links it to the user's catalog.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	status, err := parseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	var rating *int
	if cmd.IsSet("rating") {
		v := cmd.Int("rating")
		rating = &v
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	userID := cmd.Int64("user")
	if _, err := c.GetUser(ctx, userID); err != nil {
		return err
	}

	metadata, err := r.Metadata()
	if err != nil {
		return err
	}

	desc, err := metadata.Lookup(ctx, cmd.String("title"))
	if err != nil {
		return err
	}

	result, err := c.AddMovieToUser(ctx, *desc, userID, status, rating)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	switch {
	case result.Outcome == catalog.AlreadyLinked:
		return r.writePlain("%s is already in the catalog (movie ID: %d)\n", desc.Name, result.MovieID)
	case result.MovieCreated:
		return r.writePlain("✓ Added %s (%d) as a new movie (ID: %d)\n", desc.Name, desc.Year, result.MovieID)
	default:
		return r.writePlain("✓ Linked existing movie %s (ID: %d)\n", desc.Name, result.MovieID)
	}
}

// CatalogUpdate changes the rating and status of one entry.
func (r *Runner) CatalogUpdate(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	userID, movieID := cmd.Int64("user"), cmd.Int64("movie")
	status := models.WatchStatus(strings.ToLower(strings.TrimSpace(cmd.String("status"))))

	if err := c.UpdateAssociation(ctx, userID, movieID, cmd.Int("rating"), status); err != nil {
		return err
	}

	um, err := c.GetAssociation(ctx, movieID, userID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", um)
}

// CatalogRemove unlinks a movie from the user's catalog. The movie record is kept.
func (r *Runner) CatalogRemove(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	userID, movieID := cmd.Int64("user"), cmd.Int64("movie")
	if err := c.RemoveAssociation(ctx, userID, movieID); err != nil {
		return err
	}
	return r.writePlain("✓ Removed movie %d from user %d's catalog\n", movieID, userID)
}

// CatalogImport adds every title listed in a file to the user's catalog.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	status, err := parseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	titles, err := r.readTitles(cmd.String("file"))
	if err != nil {
		return err
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	metadata, err := r.Metadata()
	if err != nil {
		return err
	}

	importer := tasks.NewImporter(c, metadata, r.logger)
	opts := tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float64("rate"),
		Status:     status,
	}

	quiet := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if quiet {
				continue
			}
			switch update.Phase {
			case tasks.Lookup:
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			case tasks.Link:
				r.writePlain("   %s\n", update.Message)
			case tasks.Done:
				r.writePlainln("%s", update.Message)
			}
		}
	}()

	result, err := importer.Import(ctx, progressCh, cmd.Int64("user"), titles, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if quiet {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Import Complete!")
	for _, outcome := range []tasks.ImportOutcome{
		tasks.OutcomeCreated, tasks.OutcomeLinked, tasks.OutcomeAlreadyLinked, tasks.OutcomeNotFound, tasks.OutcomeFailed,
	} {
		r.writePlain("%-15s %d\n", outcome+":", result.Counts[outcome])
	}

	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("  - %s: %v\n", res.Title, res.Error)
		}
	}
	return nil
}

// readTitles reads one title per line from path ("-" reads the runner's input), skipping blanks and # comments.
func (r *Runner) readTitles(path string) ([]string, error) {
	var src io.Reader = r.input
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open titles file: %w", err)
		}
		defer f.Close()
		src = f
	}

	var titles []string
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	return titles, nil
}
