package user

import "time"

type Role string

const (
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// Admin is a back-office account. Customers never authenticate; they act
// on quotes through signed balance links instead.
type Admin struct {
	ID        int
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}
