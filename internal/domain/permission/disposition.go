package permission

import "fmt"

// Disposition is the stance a subject holds on one capability. Absent
// means no policy row exists.
type Disposition string

const (
	Allow  Disposition = "allow"
	Deny   Disposition = "deny"
	Absent Disposition = ""
)

// Action is a requested change to a disposition.
type Action string

const (
	ActionGrant  Action = "grant"
	ActionDeny   Action = "deny"
	ActionRemove Action = "remove"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionGrant, ActionDeny, ActionRemove:
		return a, nil
	default:
		return "", fmt.Errorf("invalid permission action %q", s)
	}
}

// Disposition is the state the action leaves behind.
func (a Action) Disposition() Disposition {
	switch a {
	case ActionGrant:
		return Allow
	case ActionDeny:
		return Deny
	default:
		return Absent
	}
}

// ParseDisposition reads a stored effect column.
func ParseDisposition(s string) (Disposition, error) {
	switch d := Disposition(s); d {
	case Allow, Deny:
		return d, nil
	default:
		return Absent, fmt.Errorf("invalid disposition %q", s)
	}
}
