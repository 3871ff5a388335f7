package domain

import "time"

type WorkerRole string

const (
	RolePilot     WorkerRole = "pilot"
	RoleAttendant WorkerRole = "flight_attendant"
)

func (r WorkerRole) Valid() bool {
	return r == RolePilot || r == RoleAttendant
}

// Worker is a crew member. Pilots and attendants share the same base
// attributes; Role tags the variant and LongHaulCertified carries the
// role-specific certification flag.
type Worker struct {
	ID                int64
	FirstName         string
	LastName          string
	Phone             string
	City              string
	Street            string
	HouseNum          int
	StartDate         time.Time
	Role              WorkerRole
	LongHaulCertified bool
}
