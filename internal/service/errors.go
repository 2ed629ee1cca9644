package service

import "errors"

var (
	// ErrStorageFault is returned when the incident ledger or audit log
	// cannot be read or written.
	ErrStorageFault = errors.New("storage fault")

	// ErrInvalidIncident is returned when an incident has an unknown
	// category or severity, or invalid coordinates.
	ErrInvalidIncident = errors.New("invalid incident")

	// ErrInvalidZone is returned when a zone name is empty.
	ErrInvalidZone = errors.New("invalid zone")

	// ErrInvalidIncidentID is returned when an incident ID is not positive.
	ErrInvalidIncidentID = errors.New("invalid incident id")

	// ErrLedgerBusy is returned when another process holds the ledger lock.
	ErrLedgerBusy = errors.New("incident ledger busy")

	// ErrEmptyMessage is returned when a chat message is blank.
	ErrEmptyMessage = errors.New("empty message")
)
