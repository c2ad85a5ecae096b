package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersList prints every user.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	users, err := c.ListUsers(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	if len(users) == 0 {
		return r.writePlain("No users yet. Add one with 'movieweb users add <name>'\n")
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		r.writePlain("%4d  %s\n", u.ID, u.UserName)
	}
	return nil
}

// UsersAdd creates a user from the name argument.
func (r *Runner) UsersAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	user, err := c.AddUser(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added user %s (ID: %d)\n", user.UserName, user.ID)
}
