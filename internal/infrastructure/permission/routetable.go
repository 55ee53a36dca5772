// Package permission holds the casbin-backed route table that maps HTTP
// requests to the module capability they require.
package permission

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/config"
	"bizdesk/internal/shared/logger"
)

var _ permission.RouteTable = (*RouteTable)(nil)

// routeModel matches a request path against gin-style patterns (keyMatch2).
// A policy line is (path, method, module tab URL, capability); "*" matches
// any method. The first matching line wins.
const routeModel = `
[request_definition]
r = path, method

[policy_definition]
p = path, method, module, capability

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = keyMatch2(r.path, p.path) && (p.method == "*" || r.method == p.method)
`

// RouteTable is safe for concurrent use; Replace swaps the whole table under
// a write lock.
type RouteTable struct {
	enforcer *casbin.Enforcer
	persist  bool
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewRouteTable builds an in-memory table from rules.
func NewRouteTable(rules []config.RouteRule, log logger.Interface) (*RouteTable, error) {
	m, err := model.NewModelFromString(routeModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	t := &RouteTable{enforcer: enforcer, logger: log}
	if err := t.Replace(rules); err != nil {
		return nil, err
	}
	return t, nil
}

// NewPersistentRouteTable stores the table in the casbin_rule table through
// the gorm adapter. Non-empty rules replace what is stored; with no rules the
// stored table is loaded as is.
func NewPersistentRouteTable(db *gorm.DB, rules []config.RouteRule, log logger.Interface) (*RouteTable, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	m, err := model.NewModelFromString(routeModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	// Replace writes the whole table with SavePolicy.
	enforcer.EnableAutoSave(false)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load route policy: %w", err)
	}

	t := &RouteTable{enforcer: enforcer, persist: true, logger: log}
	if len(rules) > 0 {
		if err := t.Replace(rules); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Replace validates rules and swaps them in for the current table.
func (t *RouteTable) Replace(rules []config.RouteRule) error {
	policies := make([][]string, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, rule := range rules {
		policy, err := toPolicy(rule)
		if err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		key := policy[0] + " " + policy[1]
		if seen[key] {
			return fmt.Errorf("route %d: duplicate entry for %s", i, key)
		}
		seen[key] = true
		policies = append(policies, policy)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.enforcer.ClearPolicy()
	if len(policies) > 0 {
		if _, err := t.enforcer.AddPolicies(policies); err != nil {
			return fmt.Errorf("failed to add route policies: %w", err)
		}
	}
	if t.persist {
		if err := t.enforcer.SavePolicy(); err != nil {
			return fmt.Errorf("failed to save route policies: %w", err)
		}
	}

	t.logger.Infow("route table loaded", "routes", len(policies), "persisted", t.persist)
	return nil
}

// Reload re-reads a persisted table.
func (t *RouteTable) Reload() error {
	if !t.persist {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload route policy: %w", err)
	}
	return nil
}

// Match returns the target of the first entry matching method and path.
func (t *RouteTable) Match(method, path string) (permission.RouteTarget, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ok, explain, err := t.enforcer.EnforceEx(path, strings.ToUpper(method))
	if err != nil {
		t.logger.Errorw("route match failed", "method", method, "path", path, "error", err)
		return permission.RouteTarget{}, false, fmt.Errorf("route match failed: %w", err)
	}
	if !ok || len(explain) < 4 {
		return permission.RouteTarget{}, false, nil
	}

	return permission.RouteTarget{
		ModuleTabURL: explain[2],
		Capability:   vo.Capability(explain[3]),
	}, true, nil
}

// Rules returns the current table as configured rules.
func (t *RouteTable) Rules() ([]config.RouteRule, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	policies, err := t.enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to read route policies: %w", err)
	}
	rules := make([]config.RouteRule, 0, len(policies))
	for _, p := range policies {
		if len(p) < 4 {
			continue
		}
		rules = append(rules, config.RouteRule{Path: p[0], Method: p[1], Module: p[2], Capability: p[3]})
	}
	return rules, nil
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodHead:   true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
	"*":               true,
}

func toPolicy(rule config.RouteRule) ([]string, error) {
	method := strings.ToUpper(strings.TrimSpace(rule.Method))
	if !allowedMethods[method] {
		return nil, fmt.Errorf("unsupported method %q", rule.Method)
	}
	path := strings.TrimSpace(rule.Path)
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with /", rule.Path)
	}
	module := strings.TrimSpace(rule.Module)
	if module == "" {
		return nil, fmt.Errorf("module is required for %s %s", method, path)
	}
	capability, err := vo.NewCapability(strings.TrimSpace(rule.Capability))
	if err != nil {
		return nil, err
	}
	return []string{path, method, module, capability.String()}, nil
}
