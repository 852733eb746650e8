package approval

import "github.com/gatehouse-sh/gatehouse/internal/errors"

// Policy controls whether tool calls require per-call confirmation.
type Policy string

const (
	// PolicyAllowAll permits every tool call without asking.
	PolicyAllowAll Policy = "allow-all"

	// PolicyApproveAll asks for confirmation before every tool call.
	// It is the fail-safe default when no interactive display can ask
	// the user to choose.
	PolicyApproveAll Policy = "approve-all"
)

// IsValid reports whether the policy is one of the supported values.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyAllowAll, PolicyApproveAll:
		return true
	default:
		return false
	}
}

func (p Policy) String() string {
	return string(p)
}

// ParsePolicy converts a string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(s)
	if !p.IsValid() {
		return "", errors.Wrapf(errors.ErrInvalidPolicy, "%q", s)
	}
	return p, nil
}

// PolicyNames lists the supported policy values.
func PolicyNames() []string {
	return []string{string(PolicyAllowAll), string(PolicyApproveAll)}
}
