package model

import "time"

// Trip lifecycle statuses. Booking and cancellation only ever toggle between
// draft and published; cancelled and archived are set by operator action or
// the archival job and are never overwritten by reservation bookkeeping.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
	StatusArchived  = "archived"
)

const (
	TravelTypeExcursion = "excursion"
	TravelTypeVacation  = "vacation"
	TravelTypeCityBreak = "city-break"
	TravelTypeOther     = "other"
)

// Reservation is one customer's seat claim against a trip. Records are
// append-only: cancellation stamps CancelledAt in place, nothing is removed,
// and a record's position in the slice is its stable identifier.
type Reservation struct {
	CustomerName  string     `json:"customerName" bson:"customerName"`
	CustomerEmail string     `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone string     `json:"customerPhone" bson:"customerPhone"`
	ReservedAt    time.Time  `json:"reservedAt" bson:"reservedAt"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
}

func (r Reservation) Active() bool {
	return r.CancelledAt == nil
}

type Trip struct {
	ID                 string            `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title              string            `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description        string            `json:"description" bson:"description" validate:"omitempty,max=10000"`
	DestinationCountry string            `json:"destinationCountry" bson:"destinationCountry" validate:"omitempty,max=100"`
	DestinationCity    string            `json:"destinationCity" bson:"destinationCity" validate:"omitempty,max=100"`
	DepartureCity      string            `json:"departureCity" bson:"departureCity" validate:"omitempty,max=100"`
	TravelType         string            `json:"travelType" bson:"travelType" validate:"omitempty,oneof=excursion vacation city-break other"`
	Category           string            `json:"category,omitempty" bson:"category,omitempty" validate:"omitempty,mongodb"`
	Properties         map[string]string `json:"properties,omitempty" bson:"properties,omitempty"`
	StartDate          time.Time         `json:"startDate" bson:"startDate"`
	EndDate            time.Time         `json:"endDate" bson:"endDate"`
	DurationDays       int               `json:"durationDays" bson:"durationDays" validate:"gte=0"`
	Price              float64           `json:"price" bson:"price" validate:"gte=0"`
	Currency           string            `json:"currency" bson:"currency" validate:"omitempty,max=10"`
	IsFeatured         bool              `json:"isFeatured" bson:"isFeatured"`
	MaxSeats           int               `json:"maxSeats" bson:"maxSeats" validate:"gte=0"`
	AvailableSeats     int               `json:"availableSeats" bson:"availableSeats"`
	Status             string            `json:"status" bson:"status" validate:"omitempty,oneof=draft published cancelled archived"`
	Reservations       []Reservation     `json:"reservations" bson:"reservations"`
	Images             []string          `json:"images" bson:"images"`
	CreatedAt          time.Time         `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// ActiveReservations counts records without a cancellation stamp.
func (t *Trip) ActiveReservations() int {
	n := 0
	for _, r := range t.Reservations {
		if r.Active() {
			n++
		}
	}
	return n
}

func (t *Trip) HasActiveReservation() bool {
	for _, r := range t.Reservations {
		if r.Active() {
			return true
		}
	}
	return false
}

// TripListQuery drives the admin list view: status bucket, free-text search,
// sort and 1-indexed pagination.
type TripListQuery struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// Status bucket values accepted by the list endpoint.
const (
	BucketAvailable = "available"
	BucketNoSeats   = "no-seats"
	BucketArchived  = "archived"
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
}

type TripPage struct {
	Products   []*Trip    `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// ArchiveReport summarizes one run of the past-trip archival job.
type ArchiveReport struct {
	ArchivedCount int `json:"archivedCount"`
	SkippedCount  int `json:"skippedCount"`
	TotalChecked  int `json:"totalChecked"`
}

// PurgeReport summarizes one run of the archived-trip purge job.
type PurgeReport struct {
	DeletedCount  int `json:"deletedCount"`
	ImagesDeleted int `json:"imagesDeleted"`
}

type TripStats struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Full      int64 `json:"full"`
}
