package datagrid

import "errors"

var (
	// ErrSecurityToken is returned when the anti-forgery token is missing
	// or invalid. Fatal for the request; never retried.
	ErrSecurityToken = errors.New("datagrid: invalid security token")

	// ErrUnknownEntity is returned when no descriptor is registered under
	// the requested entity name. A misconfiguration, logged as such.
	ErrUnknownEntity = errors.New("datagrid: unknown entity")

	// ErrPermissionDenied is returned when the caller lacks the coarse
	// listing capability for the entity.
	ErrPermissionDenied = errors.New("datagrid: permission denied")

	// ErrDataAccess is returned for any store failure (timeout, connection
	// loss, malformed query). The underlying cause is logged, never exposed.
	ErrDataAccess = errors.New("datagrid: data access failure")

	// ErrRecordNotFound is returned when a detail lookup finds no row.
	ErrRecordNotFound = errors.New("datagrid: record not found")
)
