package model

import "time"

// PlayerProfile is one member of the team roster. Exactly one profile should
// exist per identity; concurrent first-contact creation can leave more than
// one, and readers resolve that through the view's deterministic pick.
type PlayerProfile struct {
	ID           string    `json:"id" firestore:"id"`
	UserID       string    `json:"userId" firestore:"userId"`
	Name         string    `json:"name" firestore:"name"`
	JerseyNumber int       `json:"jerseyNumber" firestore:"jerseyNumber"`
	AvatarRef    string    `json:"avatarRef" firestore:"avatarRef"`
	Role         string    `json:"role" firestore:"role"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// TeamSettings is the singleton dashboard document shared by the whole
// deployment. AdminIds carries set semantics: writes go through the store's
// array-union and array-remove primitives, never whole-slice replacement.
type TeamSettings struct {
	AdminIDs      []string  `json:"adminIds" firestore:"adminIds"`
	Opponent      string    `json:"opponent" firestore:"opponent"`
	MatchDateTime string    `json:"matchDateTime" firestore:"matchDateTime"`
	JerseyColor   string    `json:"jerseyColor" firestore:"jerseyColor"`
	CoachMessage  string    `json:"coachMessage" firestore:"coachMessage"`
	LastEditor    string    `json:"lastEditor" firestore:"lastEditor"`
	LastEditedAt  time.Time `json:"lastEditedAt" firestore:"lastEditedAt"`
}

// ProfileUpdate is the set of caller-owned fields accepted by the profile
// mutation gateway. Nil fields are left untouched. The structs tags feed the
// partial merge write.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty" structs:"name,omitempty"`
	JerseyNumber *int    `json:"jerseyNumber,omitempty" structs:"jerseyNumber,omitempty"`
	AvatarRef    *string `json:"avatarRef,omitempty" structs:"avatarRef,omitempty"`
}

const (
	// DefaultJerseyNumber is assigned to self-registered profiles on first
	// contact.
	DefaultJerseyNumber = 99
	// DefaultRole labels self-registered profiles.
	DefaultRole = "New Recruit"

	// MinJerseyNumber and MaxJerseyNumber bound the accepted jersey range,
	// inclusive.
	MinJerseyNumber = 0
	MaxJerseyNumber = 99
)
