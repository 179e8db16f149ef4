package model

import "time"

// DefaultAvatar is assigned to users who never uploaded an image.
const DefaultAvatar = "https://cdn-icons-png.flaticon.com/512/3135/3135715.png"

// DefaultRole is the role carried by every registered account.
const DefaultRole = "user"

// User is the top-level profile document. Experiences and connection requests
// are embedded and have no identity outside of it.
//
// Password holds the bcrypt hash and is never serialized to JSON.
type User struct {
	ID          string       `json:"_id" bson:"_id"`
	FirstName   string       `json:"firstName" bson:"firstName"`
	LastName    string       `json:"lastName" bson:"lastName"`
	Email       string       `json:"email" bson:"email"`
	Password    string       `json:"-" bson:"password"`
	About       string       `json:"about,omitempty" bson:"about,omitempty"`
	Location    string       `json:"location,omitempty" bson:"location,omitempty"`
	Title       string       `json:"title,omitempty" bson:"title,omitempty"`
	Username    string       `json:"username,omitempty" bson:"username,omitempty"`
	Image       string       `json:"image" bson:"image"`
	Role        string       `json:"role" bson:"role"`
	Experiences []Experience `json:"experiences" bson:"experiences"`
	Connections Connections  `json:"connections" bson:"connections"`
	Version     int64        `json:"-" bson:"version"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Experience is a professional position embedded in a User.
type Experience struct {
	ID          string     `json:"_id" bson:"_id"`
	Role        string     `json:"role" bson:"role"`
	Company     string     `json:"company" bson:"company"`
	StartDate   time.Time  `json:"startDate" bson:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Area        string     `json:"area,omitempty" bson:"area,omitempty"`
	Image       string     `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Connections holds incoming requests not yet accepted and established links.
type Connections struct {
	Pending []ConnectionRequest `json:"pending" bson:"pending"`
	Active  []ConnectionRequest `json:"active" bson:"active"`
}

// ConnectionRequest references the other side of a (pending or active) connection.
type ConnectionRequest struct {
	ID        string    `json:"_id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username,omitempty"`
	Title     string `json:"title,omitempty"`
	Image     string `json:"image"`
}

// Summary returns the public reference view of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Title:     u.Title,
		Image:     u.Image,
	}
}

// Normalize replaces nil embedded slices with empty ones so documents always
// serialize lists as [] rather than null.
func (u *User) Normalize() {
	if u.Experiences == nil {
		u.Experiences = []Experience{}
	}
	if u.Connections.Pending == nil {
		u.Connections.Pending = []ConnectionRequest{}
	}
	if u.Connections.Active == nil {
		u.Connections.Active = []ConnectionRequest{}
	}
}

// ExperienceIndex returns the position of the experience with the given id, or -1.
func (u *User) ExperienceIndex(id string) int {
	return indexOf(u.Experiences, func(e Experience) bool { return e.ID == id })
}

// RemoveExperience drops the experience with the given id and reports whether it existed.
func (u *User) RemoveExperience(id string) bool {
	var ok bool
	u.Experiences, ok = removeFirst(u.Experiences, func(e Experience) bool { return e.ID == id })
	return ok
}

// PendingFrom returns the index of a pending request sent by userID, or -1.
func (c *Connections) PendingFrom(userID string) int {
	return indexOf(c.Pending, func(r ConnectionRequest) bool { return r.User == userID })
}

// ActiveWith returns the index of an active connection with userID, or -1.
func (c *Connections) ActiveWith(userID string) int {
	return indexOf(c.Active, func(r ConnectionRequest) bool { return r.User == userID })
}

// Disconnect removes userID from both lists and reports whether anything changed.
func (c *Connections) Disconnect(userID string) bool {
	match := func(r ConnectionRequest) bool { return r.User == userID }
	var inPending, inActive bool
	c.Pending, inPending = removeFirst(c.Pending, match)
	c.Active, inActive = removeFirst(c.Active, match)
	return inPending || inActive
}
