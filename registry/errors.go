package registry

import "fmt"

type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %s is already registered", e.ID)
}

type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %s is not registered", e.ID)
}

type CapacityExceededError struct {
	ID        string
	Resource  string
	Requested float64
	Available float64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf(
		"node %s cannot reserve %.2f%% %s, only %.2f%% available",
		e.ID, e.Requested, e.Resource, e.Available,
	)
}
