package portfolio

import "errors"

var (
	// ErrNotFound is returned when an item, user or image does not exist,
	// or when a draft is requested by an anonymous viewer.
	ErrNotFound = errors.New("not found")

	// ErrTitleRequired is returned by Save when the title is blank.
	ErrTitleRequired = errors.New("title is required")

	// ErrUnknownCollection is returned for any collection name outside blogs, games and projects.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidCredentials is returned by SignIn for a bad email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserExists is returned when creating a user whose email is taken.
	ErrUserExists = errors.New("user already exists")
)
