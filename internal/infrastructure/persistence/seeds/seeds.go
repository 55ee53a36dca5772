// Package seeds loads the default module catalog and bootstrap users from a
// YAML file into the registry.
package seeds

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/user"
	vo "bizdesk/internal/domain/user/value_objects"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/db"
	"bizdesk/internal/shared/id"
	"bizdesk/internal/shared/logger"
)

// File is the layout of a seed document.
type File struct {
	Modules []ModuleSeed `yaml:"modules"`
	Users   []UserSeed   `yaml:"users"`
}

type ModuleSeed struct {
	TabName      string       `yaml:"tab_name"`
	Name         string       `yaml:"name"`
	TabURL       string       `yaml:"tab_url"`
	Number       int          `yaml:"number"`
	Capabilities []string     `yaml:"capabilities"`
	Default      bool         `yaml:"default"`
	Inactive     bool         `yaml:"inactive"`
	Children     []ModuleSeed `yaml:"children"`
}

type UserSeed struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// Result counts what an Apply run created.
type Result struct {
	ModulesCreated int
	ModulesSkipped int
	UsersCreated   int
	UsersSkipped   int
}

func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Seeder writes a seed File. Modules are matched by tab URL and users by
// email, so re-running a seed only adds what is missing.
type Seeder struct {
	modules   module.Repository
	users     user.Repository
	hasher    user.PasswordHasher
	txManager *db.TransactionManager
	logger    logger.Interface
}

func NewSeeder(
	modules module.Repository,
	users user.Repository,
	hasher user.PasswordHasher,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *Seeder {
	return &Seeder{
		modules:   modules,
		users:     users,
		hasher:    hasher,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		res = Result{}
		for _, m := range f.Modules {
			if err := s.seedModule(txCtx, m, "", &res); err != nil {
				return err
			}
		}
		for _, u := range f.Users {
			if err := s.seedUser(txCtx, u, &res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Infow("seed applied",
		"modules_created", res.ModulesCreated,
		"modules_skipped", res.ModulesSkipped,
		"users_created", res.UsersCreated,
		"users_skipped", res.UsersSkipped)
	return res, nil
}

func (s *Seeder) seedModule(ctx context.Context, seed ModuleSeed, parentID string, res *Result) error {
	existing, err := s.modules.GetByTabURL(ctx, seed.TabURL)
	if err != nil {
		return fmt.Errorf("failed to look up module %s: %w", seed.TabURL, err)
	}

	current := existing
	if existing != nil {
		res.ModulesSkipped++
	} else {
		caps, err := parseCapabilities(seed.Capabilities)
		if err != nil {
			return fmt.Errorf("module %s: %w", seed.TabURL, err)
		}
		moduleID, err := id.NewModuleID()
		if err != nil {
			return err
		}
		current, err = module.NewModule(module.CreateParams{
			ID:           moduleID,
			TabName:      seed.TabName,
			Name:         seed.Name,
			TabURL:       seed.TabURL,
			Number:       seed.Number,
			ParentID:     parentID,
			Capabilities: caps,
			IsDefault:    seed.Default,
			IsActive:     !seed.Inactive,
		})
		if err != nil {
			return fmt.Errorf("module %s: %w", seed.TabURL, err)
		}
		if err := s.modules.Create(ctx, current); err != nil {
			return fmt.Errorf("failed to create module %s: %w", seed.TabURL, err)
		}
		res.ModulesCreated++
	}

	for _, child := range seed.Children {
		if err := s.seedModule(ctx, child, current.ID(), res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedUser(ctx context.Context, seed UserSeed, res *Result) error {
	email, err := vo.NewEmail(seed.Email)
	if err != nil {
		return err
	}

	existing, err := s.users.GetByEmail(ctx, email.String())
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", email, err)
	}
	if existing != nil {
		res.UsersSkipped++
		return nil
	}

	role := authorization.UserRole(seed.Role)
	if seed.Role == "" {
		role = authorization.RoleUser
	}
	u, err := user.NewUser(email, seed.Name, role)
	if err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	if seed.Password != "" {
		if err := u.SetPassword(seed.Password, s.hasher); err != nil {
			return fmt.Errorf("user %s: %w", email, err)
		}
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("failed to create user %s: %w", email, err)
	}
	res.UsersCreated++
	return nil
}

func parseCapabilities(names []string) (module.Capabilities, error) {
	var caps module.Capabilities
	for _, name := range names {
		switch name {
		case "view":
			caps.HasView = true
		case "add":
			caps.HasAdd = true
		case "edit":
			caps.HasEdit = true
		case "delete":
			caps.HasDelete = true
		default:
			return caps, fmt.Errorf("unknown capability %q", name)
		}
	}
	return caps, nil
}
