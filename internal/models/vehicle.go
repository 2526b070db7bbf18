package models

import "time"

type Vehicle struct {
	ID           int64     `json:"id"`
	DriverID     int64     `json:"driver_id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Color        string    `json:"color"`
	LicensePlate string    `json:"license_plate"`
	Seats        int       `json:"seats"`
	Electric     bool      `json:"electric"`
	CreatedAt    time.Time `json:"created_at"`
}
