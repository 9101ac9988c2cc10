package constants

// User types stored in Users.user_type.
const (
	UserTypeSeller    = "user"
	UserTypeCollector = "collector"
)

// ValidUserTypes is the set of values accepted at registration.
var ValidUserTypes = []string{UserTypeSeller, UserTypeCollector}

// IsValidUserType returns true if t is one of the allowed user types.
func IsValidUserType(t string) bool {
	for _, v := range ValidUserTypes {
		if v == t {
			return true
		}
	}
	return false
}
