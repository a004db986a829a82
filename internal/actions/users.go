package actions

import (
	"context"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/services"
)

const followFailedMessage = "Something went wrong."

// Users lists every user.
func (c *Controller) Users(ctx context.Context) ([]models.User, error) {
	c.alert.Clear()
	users, err := c.api.Users(ctx)
	if err != nil {
		return nil, c.fail(err, "Could not fetch users.")
	}
	return users, nil
}

// User loads one user's public profile.
func (c *Controller) User(ctx context.Context, userID string) (*models.User, error) {
	c.alert.Clear()
	user, err := c.api.User(ctx, userID)
	if err != nil {
		return nil, c.fail(err, "Could not fetch user")
	}
	return user, nil
}

// ToggleFollow follows target, or unfollows when the signed-in user already follows it.
//
// On success the returned copy of target has its follower list updated locally,
// without refetching. On failure target is returned unchanged.
func (c *Controller) ToggleFollow(ctx context.Context, target models.User) (models.User, error) {
	c.alert.Clear()
	if err := c.requireUser("Please log in to follow users."); err != nil {
		return target, err
	}
	me := c.session.User()
	following := target.IsFollowedBy(me.ID)

	var resp *models.MessageResponse
	var err error
	if following {
		resp, err = c.api.Unfollow(ctx, target.ID)
	} else {
		resp, err = c.api.Follow(ctx, target.ID)
	}
	if err != nil {
		return target, c.fail(err, followFailedMessage)
	}
	if resp.Message == "" {
		return target, c.fail(services.Rejected(""), followFailedMessage)
	}

	c.alert.Success(resp.Message)
	if following {
		return target.WithoutFollower(me.ID), nil
	}
	return target.WithFollower(me.Ref()), nil
}

// ReplaceUser returns users with the entry matching updated's id replaced.
func ReplaceUser(users []models.User, updated models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		if u.ID == updated.ID {
			u = updated
		}
		out[i] = u
	}
	return out
}

// Profile loads the signed-in user's own profile.
func (c *Controller) Profile(ctx context.Context) (*models.User, error) {
	c.alert.Clear()
	user, err := c.api.Profile(ctx)
	if err != nil {
		return nil, c.fail(err, "Unable to fetch profile.")
	}
	return user, nil
}

// UpdateProfile saves the username and age and returns the updated profile.
func (c *Controller) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	c.alert.Clear()
	user, err := c.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, c.fail(err, "Failed to update profile.")
	}
	c.alert.Success("Profile updated!")
	return user, nil
}
