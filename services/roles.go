package services

import "fmt"

// Role names the privileged callers of the match engine.
type Role string

const (
	RoleOperator Role = "operator"
	RoleCreator  Role = "creator"
)

// RoleConfig binds each privileged role to a single designated address,
// loaded from the environment at startup.
type RoleConfig struct {
	OperatorAddress string
	CreatorAddress  string
}

// Authorize checks that caller holds the required role. Capability check is
// explicit at every mutating entry point rather than baked into the handlers.
func (rc RoleConfig) Authorize(caller string, role Role) error {
	var want string
	switch role {
	case RoleOperator:
		want = rc.OperatorAddress
	case RoleCreator:
		want = rc.CreatorAddress
	default:
		return fmt.Errorf("%w: unknown role %q", ErrUnauthorized, role)
	}
	if caller == "" || caller != want {
		return fmt.Errorf("%w: caller %q lacks %s role", ErrUnauthorized, caller, role)
	}
	return nil
}
