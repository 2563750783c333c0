package domain

import "strings"

type Role struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Permission struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"` // "<resource>:<action>"
	Resource    string  `json:"resource"`
	Action      string  `json:"action"`
	Description *string `json:"description,omitempty"`
}

// ManageAction grants every action on its resource.
const ManageAction = "manage"

// PermissionResource returns the resource prefix of a permission name,
// split on the first colon.
func PermissionResource(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}

// ManagePermission returns the "<resource>:manage" name for a permission.
func ManagePermission(name string) string {
	return PermissionResource(name) + ":" + ManageAction
}
