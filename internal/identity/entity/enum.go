package entity

// Role is the authorization level of a user. There are exactly two levels;
// promotion to admin is one-way and driven by configuration.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// Ensure maps any unrecognized value to RoleUser.
func (r Role) Ensure() Role {
	if r == RoleAdmin {
		return RoleAdmin
	}

	return RoleUser
}
