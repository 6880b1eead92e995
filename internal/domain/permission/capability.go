// Package permission defines the closed set of capabilities the platform
// checks, and the tri-state dispositions roles and groups hold on them.
package permission

import (
	"fmt"
	"slices"
	"strings"
)

// Capability is a named permission such as "delete user groups". Only the
// values registered below exist; route wiring resolves names through
// MustCapability so a typo fails at startup.
type Capability string

const (
	ViewUserGroups              Capability = "view user groups"
	CreateUserGroups            Capability = "create user groups"
	EditUserGroups              Capability = "edit user groups"
	DeleteUserGroups            Capability = "delete user groups"
	AssignUserGroups            Capability = "assign user groups"
	ManagePermissionsUserGroups Capability = "manage permissions user groups"

	ViewUsers   Capability = "view users"
	CreateUsers Capability = "create users"
	EditUsers   Capability = "edit users"
	DeleteUsers Capability = "delete users"

	ViewActivityLogs Capability = "view activity logs"

	ViewSettings Capability = "view settings"
	EditSettings Capability = "edit settings"
)

type definition struct {
	capability  Capability
	description string
}

var registry = []definition{
	{ViewUserGroups, "List and inspect user groups"},
	{CreateUserGroups, "Create user groups"},
	{EditUserGroups, "Edit user group details"},
	{DeleteUserGroups, "Delete empty user groups"},
	{AssignUserGroups, "Add and remove group members"},
	{ManagePermissionsUserGroups, "Grant, deny and remove group permissions"},
	{ViewUsers, "List and inspect users"},
	{CreateUsers, "Create users"},
	{EditUsers, "Edit users"},
	{DeleteUsers, "Delete users"},
	{ViewActivityLogs, "Read the activity log"},
	{ViewSettings, "Read platform settings"},
	{EditSettings, "Change platform settings"},
}

var byName = func() map[string]definition {
	m := make(map[string]definition, len(registry))
	for _, d := range registry {
		m[string(d.capability)] = d
	}
	return m
}()

// Lookup returns the registered capability for name.
func Lookup(name string) (Capability, bool) {
	d, ok := byName[name]
	return d.capability, ok
}

// MustCapability panics when name is not registered.
func MustCapability(name string) Capability {
	c, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("permission: unknown capability %q", name))
	}
	return c
}

// All returns every registered capability in registration order.
func All() []Capability {
	out := make([]Capability, len(registry))
	for i, d := range registry {
		out[i] = d.capability
	}
	return out
}

// Unknown returns the names in names that are not registered, in input order.
func Unknown(names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := byName[n]; !ok && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func (c Capability) String() string { return string(c) }

func (c Capability) Description() string { return byName[string(c)].description }

// Group is the leading word of the name, used to bucket capabilities in
// the permission form ("view users" -> "view").
func (c Capability) Group() string {
	name := string(c)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
