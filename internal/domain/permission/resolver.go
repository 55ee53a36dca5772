package permission

import (
	"context"

	"bizdesk/internal/domain/module"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/errors"
)

// Rule names the step of the rule list that produced a decision.
type Rule string

const (
	RuleRoleBypass      Rule = "role_bypass"
	RuleModuleAvailable Rule = "module_available"
	RuleBlock           Rule = "block"
	RuleExplicitGrant   Rule = "explicit_grant"
	RuleModuleDefault   Rule = "module_default"
	RuleFallthrough     Rule = "fallthrough"
)

// Subject is the caller an access decision is made for.
type Subject struct {
	UserID uint
	Role   authorization.UserRole
}

// Decision is the outcome of evaluating the rule list. Reason is empty on
// allow and one of the errors.Detail* values on deny.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

func allow(rule Rule) Decision { return Decision{Allowed: true, Rule: rule} }

func deny(rule Rule, reason string) Decision {
	return Decision{Rule: rule, Reason: reason}
}

// Input carries everything one decision depends on. Row is the stored grant
// row for the pair, if any; inactive rows are ignored.
type Input struct {
	Subject    Subject
	Module     *module.Module
	Row        *Permission
	Capability vo.Capability
}

// Policy holds the tunables of the rule list.
type Policy struct {
	// BypassRole is the lowest role allowed everything without per-module checks.
	BypassRole authorization.UserRole
}

// DefaultPolicy only lets super admins bypass module checks.
func DefaultPolicy() Policy {
	return Policy{BypassRole: authorization.RoleSuperAdmin}
}

// Bypasses reports whether role skips per-module checks.
func (p Policy) Bypasses(role authorization.UserRole) bool {
	return role.AtLeast(p.BypassRole)
}

type rule func(p Policy, in Input) (Decision, bool)

// rules is evaluated top-down; the first decisive rule wins.
var rules = []rule{
	func(p Policy, in Input) (Decision, bool) {
		if p.Bypasses(in.Subject.Role) {
			return allow(RuleRoleBypass), true
		}
		return Decision{}, false
	},
	func(_ Policy, in Input) (Decision, bool) {
		if !in.Module.IsAvailable() {
			return deny(RuleModuleAvailable, errors.DetailModuleUnavailable), true
		}
		return Decision{}, false
	},
	func(_ Policy, in Input) (Decision, bool) {
		if activeRow(in) != nil && in.Row.IsBlocked() {
			return deny(RuleBlock, errors.DetailBlocked), true
		}
		return Decision{}, false
	},
	func(_ Policy, in Input) (Decision, bool) {
		row := activeRow(in)
		if row == nil {
			return Decision{}, false
		}
		if row.Grants().Has(in.Capability) {
			return allow(RuleExplicitGrant), true
		}
		return deny(RuleExplicitGrant, errors.DetailNotGranted), true
	},
	func(_ Policy, in Input) (Decision, bool) {
		if !in.Module.IsDefault() {
			return Decision{}, false
		}
		if in.Capability == vo.CapabilityView {
			return allow(RuleModuleDefault), true
		}
		return deny(RuleModuleDefault, errors.DetailNotGranted), true
	},
}

func activeRow(in Input) *Permission {
	if in.Row == nil || !in.Row.IsActive() || in.Row.ModuleID() != in.Module.ID() {
		return nil
	}
	return in.Row
}

// Evaluate runs the rule list. in.Module must not be nil.
func (p Policy) Evaluate(in Input) Decision {
	for _, r := range rules {
		if d, ok := r(p, in); ok {
			return d
		}
	}
	return deny(RuleFallthrough, errors.DetailNotGranted)
}

// Effective is the resolved access of one subject on one module.
type Effective struct {
	Module  *module.Module
	Grants  vo.Grants
	Blocked bool
}

// EffectiveGrants evaluates every capability on m for the given row.
func (p Policy) EffectiveGrants(subject Subject, m *module.Module, row *Permission) Effective {
	in := Input{Subject: subject, Module: m, Row: row}
	eff := Effective{Module: m}
	for _, c := range vo.AllCapabilities {
		in.Capability = c
		d := p.Evaluate(in)
		eff.Grants = eff.Grants.With(c, d.Allowed)
		if d.Rule == RuleBlock {
			eff.Blocked = true
		}
	}
	return eff
}

// Resolver loads modules and grant rows and applies a Policy to them. Store
// failures are returned as persistence errors, never turned into a deny.
type Resolver struct {
	modules     module.Repository
	permissions Repository
	policy      Policy
}

func NewResolver(modules module.Repository, permissions Repository, policy Policy) *Resolver {
	return &Resolver{
		modules:     modules,
		permissions: permissions,
		policy:      policy,
	}
}

// Policy returns the policy the resolver applies.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve decides whether subject may exercise capability on moduleID. An
// unknown module is a not-found error rather than a deny.
func (r *Resolver) Resolve(ctx context.Context, subject Subject, moduleID string, capability vo.Capability) (Decision, error) {
	m, err := r.modules.GetByID(ctx, moduleID)
	if err != nil {
		return Decision{}, errors.NewPersistenceError("load module", err)
	}
	if m == nil {
		return Decision{}, errors.NewNotFoundError("module not found", moduleID)
	}
	return r.ResolveModule(ctx, subject, m, capability)
}

// ResolveModule is Resolve for an already loaded module.
func (r *Resolver) ResolveModule(ctx context.Context, subject Subject, m *module.Module, capability vo.Capability) (Decision, error) {
	in := Input{Subject: subject, Module: m, Capability: capability}
	if r.policy.Bypasses(subject.Role) || !m.IsAvailable() {
		return r.policy.Evaluate(in), nil
	}

	row, err := r.permissions.GetActiveByUserAndModule(ctx, subject.UserID, m.ID())
	if err != nil {
		return Decision{}, errors.NewPersistenceError("load permission", err)
	}
	in.Row = row
	return r.policy.Evaluate(in), nil
}

// ResolveAll returns the effective grants of subject on each module, in the
// order given. Grant rows are loaded once for the whole set.
func (r *Resolver) ResolveAll(ctx context.Context, subject Subject, modules []*module.Module) ([]Effective, error) {
	rows := map[string]*Permission{}
	if !r.policy.Bypasses(subject.Role) {
		active, err := r.permissions.ListActiveByUser(ctx, subject.UserID)
		if err != nil {
			return nil, errors.NewPersistenceError("load permissions", err)
		}
		for _, p := range active {
			rows[p.ModuleID()] = p
		}
	}

	result := make([]Effective, 0, len(modules))
	for _, m := range modules {
		result = append(result, r.policy.EffectiveGrants(subject, m, rows[m.ID()]))
	}
	return result, nil
}
