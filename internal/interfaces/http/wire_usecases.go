package http

import (
	moduleusecases "bizdesk/internal/application/module/usecases"
	permissionusecases "bizdesk/internal/application/permission/usecases"
	userusecases "bizdesk/internal/application/user/usecases"
)

// allUseCases holds the use case instances behind the handlers.
type allUseCases struct {
	// Module registry
	addModuleUC       *moduleusecases.AddModuleUseCase
	editModuleUC      *moduleusecases.EditModuleUseCase
	bulkEditModulesUC *moduleusecases.BulkEditModulesUseCase
	deleteModuleUC    *moduleusecases.DeleteModuleUseCase
	listModulesUC     *moduleusecases.ListModulesUseCase
	getModuleUC       *moduleusecases.GetModuleUseCase
	getModuleTreeUC   *moduleusecases.GetModuleTreeUseCase

	// Permission store and resolver
	editPermissionsUC    *permissionusecases.EditPermissionsUseCase
	deletePermissionUC   *permissionusecases.DeletePermissionUseCase
	getUserPermissionsUC *permissionusecases.GetUserPermissionsUseCase
	resolvePermissionsUC *permissionusecases.ResolvePermissionsUseCase

	// Auth
	loginUC   *userusecases.LoginWithPasswordUseCase
	getUserUC *userusecases.GetUserUseCase
}

func (c *Container) initUseCases() {
	r, s := c.repos, c.svcs

	c.ucs = &allUseCases{
		addModuleUC:       moduleusecases.NewAddModuleUseCase(r.moduleRepo, s.sanitizer, c.log),
		editModuleUC:      moduleusecases.NewEditModuleUseCase(r.moduleRepo, s.sanitizer, r.txManager, c.log),
		bulkEditModulesUC: moduleusecases.NewBulkEditModulesUseCase(r.moduleRepo, s.sanitizer, r.txManager, c.log),
		deleteModuleUC:    moduleusecases.NewDeleteModuleUseCase(r.moduleRepo, c.log),
		listModulesUC:     moduleusecases.NewListModulesUseCase(r.moduleRepo, c.log),
		getModuleUC:       moduleusecases.NewGetModuleUseCase(r.moduleRepo, c.log),
		getModuleTreeUC:   moduleusecases.NewGetModuleTreeUseCase(r.moduleRepo, c.log),

		editPermissionsUC: permissionusecases.NewEditPermissionsUseCase(
			r.permissionRepo, r.moduleRepo, r.userRepo, r.txManager, s.invalidator, c.log,
		),
		deletePermissionUC:   permissionusecases.NewDeletePermissionUseCase(r.permissionRepo, s.invalidator, c.log),
		getUserPermissionsUC: permissionusecases.NewGetUserPermissionsUseCase(r.permissionRepo, r.userRepo, c.log),
		resolvePermissionsUC: permissionusecases.NewResolvePermissionsUseCase(r.moduleRepo, r.userRepo, s.resolver, c.log),

		loginUC:   userusecases.NewLoginWithPasswordUseCase(r.userRepo, s.hasher, &tokenIssuerAdapter{s.jwt}, c.log),
		getUserUC: userusecases.NewGetUserUseCase(r.userRepo, c.log),
	}
}
