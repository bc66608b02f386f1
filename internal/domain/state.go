package domain

// LifecycleState is the single lifecycle column shared by collections, residue lines and certificates.
// It replaces the separate status/lock flags so that "locked but active" cannot be represented.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateInactive LifecycleState = "inactive"
	StateRevoked  LifecycleState = "revoked"
)

func (s LifecycleState) Valid() bool {
	switch s {
	case StateActive, StateInactive, StateRevoked:
		return true
	}
	return false
}

func (s LifecycleState) String() string {
	return string(s)
}
