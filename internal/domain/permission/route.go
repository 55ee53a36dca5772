package permission

import vo "bizdesk/internal/domain/permission/value_objects"

// RouteTarget is what a guarded route requires: a capability on the module
// registered under ModuleTabURL.
type RouteTarget struct {
	ModuleTabURL string
	Capability   vo.Capability
}

// RouteTable maps an HTTP request to the module and capability it needs.
// ok is false when no entry matches.
type RouteTable interface {
	Match(method, path string) (target RouteTarget, ok bool, err error)
}
