package domain

// Principal is the authenticated actor behind a request, resolved by the
// external user service. It is a closed set: either an ordinary User who may
// own finance records, or an Admin who manages lifecycle state but owns
// nothing. Authorization rules branch on the concrete type, not on a role
// string.
type Principal interface {
	PrincipalID() string
	PrincipalEmail() string
	principal()
}

// User is a self-service principal. Finance records are owned by a User ID.
type User struct {
	ID    string
	Email string
	Name  string
}

func (u User) PrincipalID() string    { return u.ID }
func (u User) PrincipalEmail() string { return u.Email }
func (User) principal()               {}

// Admin is a back-office principal. Admins may move finance status but are
// barred from owner-style access.
type Admin struct {
	ID    string
	Email string
	Name  string
}

func (a Admin) PrincipalID() string    { return a.ID }
func (a Admin) PrincipalEmail() string { return a.Email }
func (Admin) principal()               {}
