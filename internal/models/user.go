package models

import "time"

// Role constants.
const (
	RoleLearner    = "learner"
	RoleInstructor = "instructor"
)

// User is a marketplace profile, either a learner or an instructor.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Account holds the SkillCoin balance for one user.
type Account struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}
