package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/urfave/cli/v3"
)

// searchUsers ranks users by fuzzy match on username, best match first.
func searchUsers(users []models.User, query string) []models.User {
	if query == "" {
		return users
	}

	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}

	matches := fuzzy.RankFindFold(query, names)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]models.User, 0, len(matches))
	for _, match := range matches {
		results = append(results, users[match.OriginalIndex])
	}
	return results
}

// UsersList prints every user, optionally narrowed by --search.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	users, err := r.controller.Users(ctx)
	if err != nil {
		return r.fail(err)
	}
	users = searchUsers(users, cmd.String("search"))
	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	viewer := r.session.User().ID

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		mark := " "
		if u.IsFollowedBy(viewer) {
			mark = "★"
		}
		r.writePlain("%s %-26s %-20s %d followers\n", mark, u.ID, u.Username, len(u.Followers))
	}
	return nil
}

// UsersShow prints a user's public profile.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	user, err := r.controller.User(ctx, id)
	if err != nil {
		return r.fail(err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.printUser(user)
}

func (r *Runner) printUser(u *models.User) error {
	r.writePlainHeader(u.Username)
	if u.Email != "" {
		r.writePlain("Email:     %s\n", u.Email)
	}
	if u.Age > 0 {
		r.writePlain("Age:       %d\n", u.Age)
	}
	r.writePlain("Followers: %d\n", len(u.Followers))
	return r.writePlain("Following: %d\n", len(u.Following))
}

// follow makes the signed-in user follow (or unfollow) a user, doing nothing when already there.
func (r *Runner) follow(ctx context.Context, cmd *cli.Command, want bool) error {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	target, err := r.controller.User(ctx, id)
	if err != nil {
		return r.fail(err)
	}
	me := r.session.User()
	if me.ID == target.ID {
		return fmt.Errorf("%w: you cannot follow yourself", shared.ErrInvalidArgument)
	}
	if target.IsFollowedBy(me.ID) == want {
		if want {
			return r.writePlain("Already following %s\n", target.Username)
		}
		return r.writePlain("Not following %s\n", target.Username)
	}

	updated, err := r.controller.ToggleFollow(ctx, *target)
	if err != nil {
		return r.fail(err)
	}
	if err := r.report(); err != nil {
		return err
	}
	return r.writePlain("%s now has %d followers\n", updated.Username, len(updated.Followers))
}

// UsersFollow follows a user.
func (r *Runner) UsersFollow(ctx context.Context, cmd *cli.Command) error {
	return r.follow(ctx, cmd, true)
}

// UsersUnfollow stops following a user.
func (r *Runner) UsersUnfollow(ctx context.Context, cmd *cli.Command) error {
	return r.follow(ctx, cmd, false)
}

// ProfileShow prints the signed-in user's profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	user, err := r.controller.Profile(ctx)
	if err != nil {
		return r.fail(err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.printUser(user)
}

// ProfileUpdate changes username and age, keeping current values for flags not given.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("username") && !cmd.IsSet("age") {
		return fmt.Errorf("%w: --username or --age", shared.ErrMissingArgument)
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	current, err := r.controller.Profile(ctx)
	if err != nil {
		return r.fail(err)
	}
	update := models.ProfileUpdate{Username: current.Username, Age: current.Age}
	if cmd.IsSet("username") {
		update.Username = cmd.String("username")
	}
	if cmd.IsSet("age") {
		age := int(cmd.Int("age"))
		if age <= 0 {
			return fmt.Errorf("%w: Please enter a valid age.", shared.ErrInvalidFlag)
		}
		update.Age = age
	}

	user, err := r.controller.UpdateProfile(ctx, update)
	if err != nil {
		return r.fail(err)
	}
	if err := r.report(); err != nil {
		return err
	}
	return r.printUser(user)
}

// ThemeShow prints the persisted theme.
func (r *Runner) ThemeShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.theme.Mode())
}

// ThemeSet persists a theme.
func (r *Runner) ThemeSet(ctx context.Context, cmd *cli.Command) error {
	raw, err := requiredArg(cmd, "mode")
	if err != nil {
		return err
	}
	mode, err := state.ParseMode(raw)
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.theme.Set(mode); err != nil {
		return err
	}
	return r.writePlain("✓ Theme set to %s\n", mode)
}

// ThemeToggle switches between light and dark.
func (r *Runner) ThemeToggle(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	mode, err := r.theme.Toggle()
	if err != nil {
		return err
	}
	return r.writePlain("✓ Theme set to %s\n", mode)
}
