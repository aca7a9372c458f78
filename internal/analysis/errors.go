package analysis

import (
	"fmt"

	"sonalyze/internal/services"
)

// EmptyPartitionError reports a computation that needs at least one record
// but received none.
type EmptyPartitionError struct {
	Partition string
}

func (e *EmptyPartitionError) Error() string {
	return fmt.Sprintf("empty partition: %s has no records", e.Partition)
}

func (e *EmptyPartitionError) Is(target error) bool { return target == services.ErrValidation }
