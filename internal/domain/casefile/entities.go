// Package casefile defines the entities the correlation engine reads and the
// data-access contracts it consumes. The engine never mutates these records;
// persistence is owned by an external layer.
package casefile

import "time"

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DateRange bounds a query in time. Nil endpoints are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	StatusPending            CaseStatus = "pending"
	StatusUnderInvestigation CaseStatus = "under_investigation"
	StatusClosed             CaseStatus = "closed"
	StatusArchived           CaseStatus = "archived"
)

// Active reports whether the case still counts toward proximity risk.
func (s CaseStatus) Active() bool {
	return s == StatusPending || s == StatusUnderInvestigation
}

// ActiveStatuses lists the statuses considered active, in query order.
var ActiveStatuses = []CaseStatus{StatusPending, StatusUnderInvestigation}

// PersonRole qualifies a person's link to a case.
type PersonRole string

const (
	RoleSuspect PersonRole = "suspect"
	RoleVictim  PersonRole = "victim"
	RoleWitness PersonRole = "witness"
)

// Incident is a single recorded event. Location and OccurredAt are always
// present on persisted incidents; a nil Location still degrades to zero
// contributions in every scorer.
type Incident struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Location    *Point    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Case is a unit of investigation. Exactly one primary incident per case.
type Case struct {
	ID                string     `json:"id"`
	Title             string     `json:"title,omitempty"`
	PrimaryIncidentID string     `json:"primary_incident_id"`
	Status            CaseStatus `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Person is an individual linked to cases with a role.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
