package events

// EventType identifies a directory lifecycle event.
type EventType string

const (
	EventEmployeeCreated EventType = "employee.created"
	EventEmployeeUpdated EventType = "employee.updated"
	EventEmployeeDeleted EventType = "employee.deleted"
)

// Event carries an employee lifecycle notification. Payload never includes
// credential material.
type Event struct {
	Type       EventType
	EmployeeID string
	Payload    map[string]any
}
