package database

import "errors"

// Sentinel errors shared by the postgres repositories. Application services
// compare against these to decide whether a failure is a missing entity, a
// benign race, or a real fault.
var (
	ErrSchoolNotFound   = errors.New("school not found")
	ErrCoachNotFound    = errors.New("coach not found")
	ErrAthleteNotFound  = errors.New("athlete not found")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrRecordNotFound   = errors.New("outreach record not found")
	ErrDMNotFound       = errors.New("dm record not found")
	ErrTemplateNotFound = errors.New("template not found")

	ErrDuplicateSchool = errors.New("school with this name already exists")
	ErrDuplicateCoach  = errors.New("coach already exists for this school")

	// ErrInFlightExists means the (athlete, coach) pair already has a
	// pending or queued record; creating a second one would allow a
	// duplicate concurrent send.
	ErrInFlightExists = errors.New("an in-flight outreach record already exists for this coach")
	// ErrStatusConflict means a conditional status update found the record
	// in a different state than expected. The losing writer treats it as a
	// no-op.
	ErrStatusConflict = errors.New("outreach record is not in the expected status")
)
