package permission

import (
	"context"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// Service answers access checks for the HTTP layer.
type Service struct {
	moduleRepo module.Repository
	resolver   *permission.Resolver
	logger     logger.Interface
}

func NewService(
	moduleRepo module.Repository,
	resolver *permission.Resolver,
	logger logger.Interface,
) *Service {
	return &Service{
		moduleRepo: moduleRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

// Check decides access on a module addressed by id.
func (s *Service) Check(ctx context.Context, subject permission.Subject, moduleID string, capability vo.Capability) (permission.Decision, error) {
	return s.resolver.Resolve(ctx, subject, moduleID, capability)
}

// CheckByTabURL decides access on the live module registered under tabURL.
// With no such module the route is treated as unavailable; only the bypass
// role gets through.
func (s *Service) CheckByTabURL(ctx context.Context, subject permission.Subject, tabURL string, capability vo.Capability) (permission.Decision, error) {
	m, err := s.moduleRepo.GetByTabURL(ctx, tabURL)
	if err != nil {
		s.logger.Errorw("failed to load module by tab URL", "tab_url", tabURL, "error", err)
		return permission.Decision{}, errors.NewPersistenceError("load module", err)
	}
	if m == nil {
		if s.resolver.Policy().Bypasses(subject.Role) {
			return permission.Decision{Allowed: true, Rule: permission.RuleRoleBypass}, nil
		}
		s.logger.Warnw("guarded route names an unknown module", "tab_url", tabURL)
		return permission.Decision{
			Rule:   permission.RuleModuleAvailable,
			Reason: errors.DetailModuleUnavailable,
		}, nil
	}
	return s.resolver.ResolveModule(ctx, subject, m, capability)
}
