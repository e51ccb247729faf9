package models

import "time"

// User is the account behind a driver and/or a passenger.
type User struct {
	ID         string    `json:"id"`
	AcsID      string    `json:"-"`
	FacebookID string    `json:"-"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	Email      string    `json:"-"`
	Locale     string    `json:"locale"`
	Deleted    bool      `json:"-"`
	CreatedAt  time.Time `json:"created"`
	UpdatedAt  time.Time `json:"updated"`
}

// UserInput carries the mutable profile fields.
type UserInput struct {
	AcsID      string `json:"acs_id"`
	FacebookID string `json:"facebook_id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Email      string `json:"email"`
	Locale     string `json:"locale"`
}

type PublicUser struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Avatar        string  `json:"avatar"`
	Locale        string  `json:"locale"`
	Stars         float64 `json:"stars"`
	ReceivedRates int64   `json:"received_rates"`
}

// PrivateProfile is what the owner of the account gets to see.
type PrivateProfile struct {
	PublicUser
	RidesDriver            int64           `json:"rides_driver"`
	RidesPassenger         int64           `json:"rides_passenger"`
	DistanceDriver         float64         `json:"distance_driver"`
	DistancePassenger      float64         `json:"distance_passenger"`
	EligibleDriverPerks    []PerkGrantView `json:"eligible_driver_perks"`
	ActiveDriverPerks      []PerkGrantView `json:"active_driver_perks"`
	EligiblePassengerPerks []PerkGrantView `json:"eligible_passenger_perks"`
	ActivePassengerPerks   []PerkGrantView `json:"active_passenger_perks"`
	Balance                int64           `json:"balance"`
	BonusBalance           int64           `json:"bonus_balance"`
}

func (u User) ToPublic(stars float64, received int64) PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Avatar:        u.Avatar,
		Locale:        u.Locale,
		Stars:         stars,
		ReceivedRates: received,
	}
}

// Token is an opaque session handle issued to a user.
type Token struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"-"`
}
