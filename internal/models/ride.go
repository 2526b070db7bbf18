package models

import (
	"fmt"
	"time"
)

type RideStatus string

const (
	RideStatusPlanned    RideStatus = "PLANNED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Transitions are one-directional and externally triggered; a ride never
// changes status on its own clock.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusPlanned:    {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress: {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted:  {},
	RideStatusCancelled:  {},
}

func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	allowed, exists := rideTransitions[s]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

func (s RideStatus) AcceptsBookings() bool {
	return s == RideStatusPlanned
}

func (s RideStatus) IsModifiable() bool {
	return s == RideStatusPlanned
}

func (s RideStatus) IsCancellable() bool {
	return s == RideStatusPlanned || s == RideStatusInProgress
}

func (s RideStatus) IsValid() bool {
	_, exists := rideTransitions[s]
	return exists
}

// Reservation records seats booked by one passenger on one ride.
type Reservation struct {
	ID          int64     `json:"id"`
	RideID      int64     `json:"ride_id"`
	PassengerID int64     `json:"passenger_id"`
	Seats       int       `json:"seats"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ride is the aggregate root for a published carpooling trip. All seat and
// status mutation goes through its methods; repositories only load and persist
// the state they are given.
type Ride struct {
	ID              int64         `json:"id"`
	Driver          *User         `json:"driver"`
	Vehicle         *Vehicle      `json:"vehicle,omitempty"`
	Departure       *Location     `json:"departure"`
	Arrival         *Location     `json:"arrival"`
	DepartureTime   time.Time     `json:"departure_time"`
	ArrivalTime     time.Time     `json:"arrival_time"`
	PricePerSeat    Money         `json:"price_per_seat"`
	TotalSeats      int           `json:"total_seats"`
	AvailableSeats  int           `json:"available_seats"`
	Reservations    []Reservation `json:"reservations,omitempty"`
	CarbonFootprint float64       `json:"carbon_footprint"` // grams CO2 per passenger
	Status          RideStatus    `json:"status"`
	Version         int           `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (r *Ride) BookedSeats() int {
	return r.TotalSeats - r.AvailableSeats
}

func (r *Ride) IsOwnedBy(user *User) bool {
	return user != nil && r.Driver != nil && r.Driver.ID == user.ID
}

// ReservationFor returns the passenger's reservation, or nil.
func (r *Ride) ReservationFor(passengerID int64) *Reservation {
	for i := range r.Reservations {
		if r.Reservations[i].PassengerID == passengerID {
			return &r.Reservations[i]
		}
	}
	return nil
}

// BookSeats reserves seats for a passenger. A passenger holds at most one
// reservation per ride.
func (r *Ride) BookSeats(passengerID int64, seats int, reference string) error {
	if seats <= 0 {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("seat count must be positive, got %d", seats)}
	}
	if !r.Status.AcceptsBookings() {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("ride in status %s does not accept bookings", r.Status)}
	}
	if r.Driver != nil && r.Driver.ID == passengerID {
		return &BookingError{RideID: r.ID, Reason: "driver cannot book a seat on their own ride"}
	}
	if r.ReservationFor(passengerID) != nil {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("passenger %d already holds a reservation", passengerID)}
	}
	if seats > r.AvailableSeats {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("requested %d seats but only %d available", seats, r.AvailableSeats)}
	}

	r.Reservations = append(r.Reservations, Reservation{
		RideID:      r.ID,
		PassengerID: passengerID,
		Seats:       seats,
		Reference:   reference,
		CreatedAt:   time.Now(),
	})
	r.AvailableSeats -= seats

	return nil
}

// CancelBooking releases the passenger's reservation and restores its seats.
// A second cancellation for the same passenger fails.
func (r *Ride) CancelBooking(passengerID int64) error {
	for i := range r.Reservations {
		if r.Reservations[i].PassengerID == passengerID {
			r.AvailableSeats += r.Reservations[i].Seats
			if r.AvailableSeats > r.TotalSeats {
				r.AvailableSeats = r.TotalSeats
			}
			r.Reservations = append(r.Reservations[:i], r.Reservations[i+1:]...)
			return nil
		}
	}

	return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("passenger %d has no reservation to cancel", passengerID)}
}

func (r *Ride) TransitionTo(next RideStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("invalid status transition from %s to %s", r.Status, next)}
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return nil
}

func (r *Ride) Start() error {
	return r.TransitionTo(RideStatusInProgress)
}

func (r *Ride) Complete() error {
	return r.TransitionTo(RideStatusCompleted)
}

func (r *Ride) Cancel() error {
	if !r.Status.IsCancellable() {
		return &BookingError{RideID: r.ID, Reason: fmt.Sprintf("ride in status %s cannot be cancelled", r.Status)}
	}
	return r.TransitionTo(RideStatusCancelled)
}
