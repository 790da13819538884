package contextkeys

type contextKey string

const (
	UserIDKey         contextKey = "UserID"
	OrganizationIDKey contextKey = "OrganizationID"
)
