package models

type UserRole string

const (
	RoleVolunteer UserRole = "volunteer"
	RoleJudge     UserRole = "judge"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleVolunteer, RoleJudge, RoleAdmin:
		return true
	}
	return false
}

// User is the application-level role record keyed by principal id.
type User struct {
	UID          string   `json:"uid"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
