package models

// Person represents a roommate taking part in the ledger.
type Person struct {
	// ID is the unique identifier for the person (UUID format, "user-1" for the
	// default current user).
	ID string `json:"id"`

	// Name is the display name of the person.
	Name string `json:"name"`

	// Color is the display color used by the presentation layer (e.g. "hsl(145, 55%, 38%)").
	Color string `json:"color"`

	// IsCurrentUser marks the local operator. Exactly one person has it set.
	IsCurrentUser bool `json:"isCurrentUser"`
}

// User is the Person-shaped record of the current user, extended with the
// student ID captured at login.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"studentId,omitempty"`
	Color     string `json:"color"`
}

// Person returns the roommate view of the user.
func (u User) Person() Person {
	return Person{
		ID:            u.ID,
		Name:          u.Name,
		Color:         u.Color,
		IsCurrentUser: true,
	}
}
