// Code scaffolded by jsonbind from a sample document.

package usermodel

import (
	"time"

	"github.com/mcncl/jsonbind/internal/binder"
	"github.com/mcncl/jsonbind/internal/models"
)

type UserData struct {
	User UserDataUser
}

// Fields implements binder.Record.
func (r *UserData) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("user", &r.User, binder.Nested[UserDataUser]()),
	}
}

type UserDataUser struct {
	Id          int
	Name        string
	Email       string
	Active      bool
	CreatedAt   time.Time
	Roles       []string
	Profile     UserDataUserProfile
	Preferences UserDataUserPreferences
	Stats       UserDataUserStats
}

// Fields implements binder.Record.
func (r *UserDataUser) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("id", &r.Id, binder.Int[int]()),
		binder.Field("name", &r.Name, binder.Str()),
		binder.Field("email", &r.Email, binder.Str()),
		binder.Field("active", &r.Active, binder.Bool()),
		binder.Field("created_at", &r.CreatedAt, binder.Date()).DateFormat(time.RFC3339),
		binder.Field("roles", &r.Roles, binder.List(binder.Str())),
		binder.Field("profile", &r.Profile, binder.Nested[UserDataUserProfile]()),
		binder.Field("preferences", &r.Preferences, binder.Nested[UserDataUserPreferences]()),
		binder.Field("stats", &r.Stats, binder.Nested[UserDataUserStats]()),
	}
}

type UserDataUserPreferences struct {
	Theme         string
	Notifications UserDataUserPreferencesNotifications
}

// Fields implements binder.Record.
func (r *UserDataUserPreferences) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("theme", &r.Theme, binder.Str()),
		binder.Field("notifications", &r.Notifications, binder.Nested[UserDataUserPreferencesNotifications]()),
	}
}

type UserDataUserPreferencesNotifications struct {
	Email bool
	Push  bool
}

// Fields implements binder.Record.
func (r *UserDataUserPreferencesNotifications) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("email", &r.Email, binder.Bool()),
		binder.Field("push", &r.Push, binder.Bool()),
	}
}

type UserDataUserProfile struct {
	Bio       string
	AvatarUrl string
	Location  string
	Social    UserDataUserProfileSocial
}

// Fields implements binder.Record.
func (r *UserDataUserProfile) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("bio", &r.Bio, binder.Str()),
		binder.Field("avatar_url", &r.AvatarUrl, binder.Str()),
		binder.Field("location", &r.Location, binder.Str()),
		binder.Field("social", &r.Social, binder.Nested[UserDataUserProfileSocial]()),
	}
}

type UserDataUserProfileSocial struct {
	Twitter  string
	Github   string
	Linkedin models.Value
}

// Fields implements binder.Record.
func (r *UserDataUserProfileSocial) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("twitter", &r.Twitter, binder.Str()),
		binder.Field("github", &r.Github, binder.Str()),
		binder.Field("linkedin", &r.Linkedin, binder.Any()),
	}
}

type UserDataUserStats struct {
	Followers int
	Following int
	Posts     int
}

// Fields implements binder.Record.
func (r *UserDataUserStats) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("followers", &r.Followers, binder.Int[int]()),
		binder.Field("following", &r.Following, binder.Int[int]()),
		binder.Field("posts", &r.Posts, binder.Int[int]()),
	}
}
