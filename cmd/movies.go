package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/repositories"
	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesList prints stored movies, optionally filtered by director and year.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	filter := repositories.MovieFilter{Director: cmd.String("director"), Year: cmd.Int("year")}
	movies, err := c.SearchMovies(ctx, filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	if len(movies) == 0 {
		return r.writePlain("No movies found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Movies (%d)", len(movies)))
	for _, m := range movies {
		r.writePlain("%4d  %s (%d) - %s\n", m.ID, m.Name, m.ReleaseYear, m.Director)
	}
	return nil
}

// MoviesShow prints one movie and the number of catalogs that contain it.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	id := cmd.Int64("id")
	movie, err := c.GetMovie(ctx, id)
	if err != nil {
		return err
	}

	count, err := c.MovieStats(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			*models.Movie
			Catalogs int `json:"catalogs"`
		}{movie, count}, cmd.Bool("pretty"))
	}

	r.printMovie(movie)
	r.writePlain("In catalogs: %d\n", count)
	return nil
}

// MoviesFind looks up a stored movie by name, ignoring case.
func (r *Runner) MoviesFind(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	movie, err := c.FindMovieByName(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}
	r.printMovie(movie)
	return nil
}

// MoviesLookup queries the metadata service without touching the database.
func (r *Runner) MoviesLookup(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	metadata, err := r.Metadata()
	if err != nil {
		return err
	}

	r.logger.Debug("looking up title", "service", metadata.Name(), "title", title)
	desc, err := metadata.Lookup(ctx, title)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(desc, cmd.Bool("pretty"))
	}
	r.printMovie(desc.Movie())
	return nil
}

func (r *Runner) printMovie(m *models.Movie) {
	if m.ID != 0 {
		r.writePlainHeader(fmt.Sprintf("%s (ID: %d)", m.Name, m.ID))
	} else {
		r.writePlainHeader(m.Name)
	}
	r.writePlain("Director: %s\n", m.Director)
	r.writePlain("Year: %d\n", m.ReleaseYear)
	r.writePlain("Rating: %.1f\n", m.Rating)
	r.writePlain("Poster: %s\n", m.Poster)
	r.writePlain("Plot: %s\n", m.Plot)
}
