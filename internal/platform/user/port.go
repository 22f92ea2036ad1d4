package user

import "context"

// Repository defines the interface for user persistence operations
type Repository interface {
	// Create creates a new user and assigns its ID
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Exists checks if a user with the given email exists
	Exists(ctx context.Context, email string) (bool, error)
}
