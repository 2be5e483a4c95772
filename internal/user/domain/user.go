package domain

// User is the minimal owner record the monitor needs for notification routing.
type User struct {
	ID    string
	Email string
}
