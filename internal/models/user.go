package models

// UserRef is the compact user form used in follower and following lists.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
}

// User is an account profile as returned by /me, /user/:id, /users and /user/profile.
type User struct {
	ID             string    `json:"_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Age            int       `json:"age,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Followers      []UserRef `json:"followers,omitempty"`
	Following      []UserRef `json:"following,omitempty"`
}

// Ref returns the compact reference for u.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// IsFollowedBy reports whether userID appears in the follower list.
func (u User) IsFollowedBy(userID string) bool {
	for _, f := range u.Followers {
		if f.ID == userID {
			return true
		}
	}
	return false
}

// WithFollower returns a copy of u with follower appended, unless already present.
func (u User) WithFollower(follower UserRef) User {
	if u.IsFollowedBy(follower.ID) {
		return u
	}
	followers := make([]UserRef, 0, len(u.Followers)+1)
	followers = append(followers, u.Followers...)
	u.Followers = append(followers, follower)
	return u
}

// WithoutFollower returns a copy of u with userID removed from the follower list.
func (u User) WithoutFollower(userID string) User {
	followers := make([]UserRef, 0, len(u.Followers))
	for _, f := range u.Followers {
		if f.ID != userID {
			followers = append(followers, f)
		}
	}
	u.Followers = followers
	return u
}
