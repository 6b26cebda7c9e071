package data

type UserRole string

const (
	Guest UserRole = "Guest"
	Host  UserRole = "Host"
)

// AuthContext is the authenticated identity handed into core operations.
// Handlers build it from the transport; services never look at headers.
type AuthContext struct {
	UserID string
	Role   UserRole
}

func (a AuthContext) IsGuest() bool { return a.Role == Guest }
func (a AuthContext) IsHost() bool  { return a.Role == Host }
