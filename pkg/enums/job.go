package enums

import "fmt"

// JobType identifies the kind of work a queue entry carries.
type JobType string

const (
	JobTypeOrderCreate          JobType = "order-create"
	JobTypeNotificationSend     JobType = "notification-send"
	JobTypeTenantRegistration   JobType = "tenant-registration"
	JobTypePujaseraRegistration JobType = "pujasera-registration"
)

var validJobTypes = []JobType{
	JobTypeOrderCreate,
	JobTypeNotificationSend,
	JobTypeTenantRegistration,
	JobTypePujaseraRegistration,
}

func (t JobType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known JobType.
func (t JobType) IsValid() bool {
	for _, candidate := range validJobTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseJobType converts raw input into a JobType.
func ParseJobType(value string) (JobType, error) {
	for _, candidate := range validJobTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid job type %q", value)
}

// JobStatus is the lifecycle state of a queue entry. Pending is the only
// non-terminal value.
type JobStatus string

const (
	JobStatusPending     JobStatus = "pending"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusSent        JobStatus = "sent"
	JobStatusFailed      JobStatus = "failed"
	JobStatusUnknownType JobStatus = "unknown_type"
)

// IsTerminal reports whether the status can no longer change.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusSent, JobStatusFailed, JobStatusUnknownType:
		return true
	}
	return false
}
