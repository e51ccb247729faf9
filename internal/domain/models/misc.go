package models

import "time"

type UserPosition struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Region    string    `json:"region"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Archived  bool      `json:"-"`
	CreatedAt time.Time `json:"created"`
}

type Trace struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AppVersion string    `json:"app_version"`
	Level      string    `json:"level"`
	Date       string    `json:"date"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created"`
}

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created"`
}
