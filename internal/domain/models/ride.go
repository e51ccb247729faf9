package models

import "time"

type Driver struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CarMake      string    `json:"car_make"`
	CarModel     string    `json:"car_model"`
	CarColor     string    `json:"car_color"`
	LicensePlate string    `json:"license_plate"`
	Telephone    string    `json:"telephone"`
	Hidden       bool      `json:"hidden"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	User         *User     `json:"user,omitempty"`
}

type DriverInput struct {
	CarMake      string `json:"car_make"`
	CarModel     string `json:"car_model"`
	CarColor     string `json:"car_color"`
	LicensePlate string `json:"license_plate"`
	Telephone    string `json:"telephone"`
}

type Passenger struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	Origin               string     `json:"origin"`
	OriginLatitude       float64    `json:"origin_latitude"`
	OriginLongitude      float64    `json:"origin_longitude"`
	Destination          string     `json:"destination"`
	DestinationLatitude  float64    `json:"destination_latitude"`
	DestinationLongitude float64    `json:"destination_longitude"`
	Distance             float64    `json:"distance"`
	Seats                int        `json:"seats"`
	PickupTime           *time.Time `json:"pickup_time"`
	Matched              bool       `json:"matched"`
	Active               bool       `json:"-"`
	CreatedAt            time.Time  `json:"-"`
	UpdatedAt            time.Time  `json:"-"`
	User                 *User      `json:"user,omitempty"`
}

type PassengerInput struct {
	Origin               string     `json:"origin"`
	OriginLatitude       float64    `json:"origin_latitude"`
	OriginLongitude      float64    `json:"origin_longitude"`
	Destination          string     `json:"destination"`
	DestinationLatitude  float64    `json:"destination_latitude"`
	DestinationLongitude float64    `json:"destination_longitude"`
	Distance             float64    `json:"distance"`
	Seats                int        `json:"seats"`
	PickupTime           *time.Time `json:"pickup_time"`
}

// DriveRequest pairs a driver with a passenger. It stays active until the
// ride is completed or cancelled.
type DriveRequest struct {
	ID                string     `json:"id"`
	DriverID          string     `json:"driver_id"`
	PassengerID       string     `json:"passenger_id"`
	Accepted          bool       `json:"accepted"`
	Cancelled         bool       `json:"cancelled"`
	Active            bool       `json:"active"`
	OfferedPickupTime *time.Time `json:"offered_pickup_time"`
	CreatedAt         time.Time  `json:"created"`
	UpdatedAt         time.Time  `json:"-"`
	Driver            *Driver    `json:"driver,omitempty"`
	Passenger         *Passenger `json:"passenger,omitempty"`
}

type Rate struct {
	ID             string    `json:"id"`
	DriveRequestID string    `json:"drive_request_id"`
	RaterUserID    string    `json:"rater_user_id"`
	RatedUserID    string    `json:"rated_user_id"`
	RaterIsDriver  bool      `json:"rater_is_driver"`
	Stars          int       `json:"stars"`
	CreatedAt      time.Time `json:"created"`
}

// RideStats aggregates accepted rides of a user on one side.
type RideStats struct {
	Rides    int64   `json:"rides"`
	Distance float64 `json:"distance"`
}
