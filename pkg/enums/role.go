package enums

// Role identifies the account type attached to a login.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSeller:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
