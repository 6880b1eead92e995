package permission

import (
	"fmt"
	"strconv"
	"strings"
)

// Subject identifies a policy holder: "role:<slug>" or "group:<id>".
// Groups are keyed by id so renames keep their policies.
type Subject string

const (
	rolePrefix  = "role:"
	groupPrefix = "group:"
)

func RoleSubject(slug string) Subject {
	return Subject(rolePrefix + slug)
}

func GroupSubject(groupID uint) Subject {
	return Subject(groupPrefix + strconv.FormatUint(uint64(groupID), 10))
}

func (s Subject) String() string { return string(s) }

func (s Subject) IsGroup() bool { return strings.HasPrefix(string(s), groupPrefix) }

func (s Subject) IsRole() bool { return strings.HasPrefix(string(s), rolePrefix) }

// GroupID extracts the id of a group subject.
func (s Subject) GroupID() (uint, error) {
	if !s.IsGroup() {
		return 0, fmt.Errorf("subject %q is not a group", s)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(string(s), groupPrefix), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("subject %q has no valid group id", s)
	}
	return uint(id), nil
}

// Subjects lists the policy holders of a principal: its roles and the
// groups whose membership is currently effective.
func Subjects(roles []string, groupIDs []uint) []Subject {
	out := make([]Subject, 0, len(roles)+len(groupIDs))
	for _, r := range roles {
		out = append(out, RoleSubject(r))
	}
	for _, id := range groupIDs {
		out = append(out, GroupSubject(id))
	}
	return out
}
