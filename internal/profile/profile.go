package profile

// Profile represents a user profile sourced from the remote user directory.
// It is pure data: values are immutable once constructed and equality is
// structural (all fields are comparable, so == works).
type Profile struct {
	ID       string
	Name     string
	Username string
	Email    string
	Address  Address
	Phone    string
	Website  string
	Company  Company
}

// Address is the structured postal address of a profile.
type Address struct {
	Street  string
	Suite   string
	City    string
	Zipcode string
	Geo     Geo
}

// Geo is a latitude/longitude pair.
type Geo struct {
	Lat float64
	Lng float64
}

// Company holds the company information attached to a profile.
type Company struct {
	Name        string
	CatchPhrase string
	// BS is the company tagline, named after the upstream field.
	BS string
}

// IsZero reports whether the profile carries no data at all.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// NotFoundError reports that no profile could be produced for an identifier.
// The message preserves the underlying cause (typically the upstream
// failure text) and is safe to surface to callers.
type NotFoundError struct {
	Message string
}

// Error returns the failure message.
func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "user not found"
	}
	return e.Message
}
