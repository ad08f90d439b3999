package host

import (
	"fmt"
	"log/slog"

	"github.com/proxyscript/script-sdk/go/application/schema"
	"github.com/proxyscript/script-sdk/go/application/validation"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/domain/scope"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
	"github.com/proxyscript/script-sdk/go/infrastructure/findingstore"
)

// Services is the host side wired from a Config: the collaborators of the
// built-in host functions and the registry that dispatches to them.
type Services struct {
	Config   *Config
	Logger   *slog.Logger
	Sink     *hostfuncs.ConsoleSink
	Scope    *scope.Scope
	Findings ports.FindingStore
	Schemas  *schema.Registry
	Registry *hostfuncs.HandlerRegistry
	loader   *Loader
}

// NewServices opens the findings store, loads the scope file and builds the
// host function registry. Extra registry options are applied after the
// built-in bundles, so custom handlers may be added but not replace them.
func NewServices(cfg *Config, logger *slog.Logger, opts ...hostfuncs.RegistryOption) (*Services, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Services{
		Config: cfg,
		Logger: logger,
		Sink:   hostfuncs.NewConsoleSink(0),
		loader: NewLoader(),
	}

	set, err := svc.loadScope()
	if err != nil {
		return nil, err
	}
	svc.Scope = scope.New(set, scope.WithExclusionHandler(&scope.LogExclusionHandler{Logger: logger}))

	sendOpts, err := cfg.SendOptions()
	if err != nil {
		return nil, err
	}

	svc.Schemas, err = schema.NewHostFunctionRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build host function schemas: %w", err)
	}
	validator, err := validation.NewPayloadValidator(svc.Schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to compile host function schemas: %w", err)
	}

	svc.Findings, err = findingstore.Open(cfg.Findings.Driver, cfg.Findings.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open findings store: %w", err)
	}

	regOpts := []hostfuncs.RegistryOption{
		hostfuncs.WithMiddleware(
			hostfuncs.PanicRecoveryMiddleware(),
			hostfuncs.LoggingMiddleware(logger),
			hostfuncs.MaxPayloadMiddleware(hostfuncs.DefaultMaxRequestSize),
			hostfuncs.PayloadValidationMiddleware(validator),
		),
		hostfuncs.WithBundle(hostfuncs.AllBundles(hostfuncs.HostServices{
			Logger:      logger,
			Sink:        svc.Sink,
			Scope:       svc.Scope,
			Findings:    svc.Findings,
			SendOptions: sendOpts,
		})),
	}
	svc.Registry, err = hostfuncs.NewRegistry(append(regOpts, opts...)...)
	if err != nil {
		svc.Findings.Close()
		return nil, fmt.Errorf("failed to build host function registry: %w", err)
	}

	return svc, nil
}

func (s *Services) loadScope() (*entities.ScopeSet, error) {
	if s.Config.ScopeFile == "" {
		return &entities.ScopeSet{}, nil
	}
	set, err := s.loader.LoadScopeFile(s.Config.ScopeFile, s.Config.ScopeVars)
	if err != nil {
		return nil, fmt.Errorf("scope file %s: %w", s.Config.ScopeFile, err)
	}
	return set, nil
}

// ReloadScope re-reads the scope file and swaps the rules in place. On error
// the previous rules stay active.
func (s *Services) ReloadScope() error {
	set, err := s.loadScope()
	if err != nil {
		return err
	}
	s.Scope.Reload(set)
	s.Logger.Info("scope reloaded", "allow_rules", len(set.Allow), "deny_rules", len(set.Deny))
	return nil
}

// Close releases the findings store.
func (s *Services) Close() error {
	if s.Findings == nil {
		return nil
	}
	return s.Findings.Close()
}
