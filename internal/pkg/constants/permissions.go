package constants

const (
	CreateListing   = "create_listing"
	EditListing     = "edit_listing"
	DeleteListing   = "delete_listing"
	DecideOffer     = "decide_offer"
	MakeOffer       = "make_offer"
	ViewCollected   = "view_collected"
	ViewOwnListings = "view_own_listings"
)

// PermissionUserTypes maps each permission to the user types allowed to perform it.
// Ownership is checked later by the listing guard; this only gates the route.
var PermissionUserTypes = map[string][]string{
	CreateListing:   {UserTypeSeller, UserTypeCollector},
	EditListing:     {UserTypeSeller, UserTypeCollector},
	DeleteListing:   {UserTypeSeller, UserTypeCollector},
	DecideOffer:     {UserTypeSeller, UserTypeCollector},
	ViewOwnListings: {UserTypeSeller, UserTypeCollector},
	MakeOffer:       {UserTypeCollector},
	ViewCollected:   {UserTypeCollector},
}

// AllowedUserType returns true if userType is in the list for the permission.
func AllowedUserType(permission, userType string) bool {
	types, ok := PermissionUserTypes[permission]
	if !ok {
		return false
	}
	for _, t := range types {
		if t == userType {
			return true
		}
	}
	return false
}
