package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/pkg/db/models"
)

// Summary is the user shape returned to clients. The password hash never
// leaves the package boundary.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromModel converts a stored user into its API shape.
func FromModel(user *models.User) Summary {
	return Summary{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
