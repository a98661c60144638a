package auth

import (
	"strings"

	"bhutantours/models"
	"bhutantours/utils"
)

// Principal is whoever is authenticating: a stored user or the configured admin.
type Principal interface {
	ID() string
	Email() string
	Role() string
	View() models.UserView
	isPrincipal()
}

// RegularUser wraps a users collection record.
type RegularUser struct {
	Record *models.User
}

func (u RegularUser) ID() string            { return u.Record.ID }
func (u RegularUser) Email() string         { return u.Record.Email }
func (u RegularUser) Role() string          { return u.Record.Role }
func (u RegularUser) View() models.UserView { return u.Record.View() }
func (RegularUser) isPrincipal()            {}

// DistinguishedAdmin is the single administrator defined in configuration.
// It is never stored and only signs in with password plus email OTP.
type DistinguishedAdmin struct {
	email        string
	name         string
	passwordHash string
}

// NewDistinguishedAdmin returns nil when no admin email is configured.
func NewDistinguishedAdmin(email, name, passwordHash string) *DistinguishedAdmin {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if name == "" {
		name = "System Admin"
	}
	return &DistinguishedAdmin{email: email, name: name, passwordHash: passwordHash}
}

func (a *DistinguishedAdmin) ID() string    { return utils.AdminID }
func (a *DistinguishedAdmin) Email() string { return a.email }
func (a *DistinguishedAdmin) Role() string  { return models.RoleAdmin }
func (a *DistinguishedAdmin) View() models.UserView {
	return models.UserView{ID: utils.AdminID, Name: a.name, Email: a.email, Role: models.RoleAdmin}
}
func (*DistinguishedAdmin) isPrincipal() {}

// Matches reports whether email identifies the admin.
func (a *DistinguishedAdmin) Matches(email string) bool {
	return a != nil && strings.ToLower(strings.TrimSpace(email)) == a.email
}
