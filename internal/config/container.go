package config

import (
	"fmt"
	"net/http"

	"proposal-client/internal/domain"
	"proposal-client/internal/infra/supabase"
	"proposal-client/internal/navigation"
	"proposal-client/internal/notify"
	"proposal-client/internal/remote"
	"proposal-client/internal/service"
	"proposal-client/internal/session"
	"proposal-client/internal/spreadsheet"
	"proposal-client/internal/workflow"
	"proposal-client/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config        domain.Config
	Logger        domain.Logger
	Sessions      *session.Store
	Remote        *remote.Client
	Authenticator domain.Authenticator
	AuthService   *service.AuthService
	Proposals     *service.ProposalService
	Classifier    *spreadsheet.Classifier
	Notifications *notify.Buffer
	Notifier      domain.Notifier
	Navigator     *navigation.Outbox
	Coordinator   *navigation.Coordinator
	Controller    *workflow.Controller
}

type containerOptions struct {
	logger   domain.Logger
	notifier domain.Notifier
	storage  session.Storage
	client   *http.Client
}

// Option customises container wiring.
type Option func(*containerOptions)

// WithLogger replaces the logger built from LOG_LEVEL.
func WithLogger(l domain.Logger) Option {
	return func(o *containerOptions) { o.logger = l }
}

// WithNotifier sends notifications somewhere other than the in-memory buffer.
func WithNotifier(n domain.Notifier) Option {
	return func(o *containerOptions) { o.notifier = n }
}

// WithSessionStorage replaces the on-disk session storage.
func WithSessionStorage(s session.Storage) Option {
	return func(o *containerOptions) { o.storage = s }
}

// WithHTTPClient replaces the HTTP client used for the proposal service.
func WithHTTPClient(c *http.Client) Option {
	return func(o *containerOptions) { o.client = c }
}

// NewContainer creates a new dependency injection container from the environment
func NewContainer(opts ...Option) (*Container, error) {
	return NewContainerWithConfig(NewConfig(), opts...)
}

// NewContainerWithConfig wires every component around cfg.
func NewContainerWithConfig(cfg domain.Config, opts ...Option) (*Container, error) {
	o := containerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	appLogger := o.logger
	if appLogger == nil {
		appLogger = logger.NewLogger(cfg.GetLogLevel())
	}
	storage := o.storage
	if storage == nil {
		storage = session.NewFileStorage(cfg.GetSessionDir())
	}
	httpClient := o.client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetHTTPTimeout()}
	}

	sessions := session.NewStore(storage, appLogger)

	// A 401 on any authenticated call expires the session before the
	// error reaches the caller.
	remoteClient := remote.NewClient(cfg.GetAPIBaseURL(), appLogger,
		remote.WithHTTPClient(httpClient),
		remote.WithTokenSource(sessions.Token),
		remote.WithUnauthorizedHandler(sessions.Expire),
	)

	authenticator, err := newAuthenticator(cfg, appLogger, remoteClient)
	if err != nil {
		return nil, err
	}

	buffer := notify.NewBuffer(100)
	notifier := o.notifier
	if notifier == nil {
		notifier = buffer
	}

	proposals := service.NewProposalService(remoteClient, service.NewStorageService(cfg.GetDownloadDir()), appLogger)
	classifier := spreadsheet.NewClassifier(cfg.GetMaxFileSize())
	outbox := navigation.NewOutbox()
	coordinator := navigation.NewCoordinator(outbox, appLogger)
	controller := workflow.NewController(remoteClient, classifier, proposals, notifier, appLogger)

	controller.Subscribe(coordinator.OnSnapshot)
	sessions.Subscribe(func(e domain.SessionEvent) {
		if e.Type == domain.SessionCleared {
			controller.Reset()
		}
		coordinator.OnSessionEvent(e)
	})

	return &Container{
		Config:        cfg,
		Logger:        appLogger,
		Sessions:      sessions,
		Remote:        remoteClient,
		Authenticator: authenticator,
		AuthService:   service.NewAuthService(authenticator, sessions, appLogger),
		Proposals:     proposals,
		Classifier:    classifier,
		Notifications: buffer,
		Notifier:      notifier,
		Navigator:     outbox,
		Coordinator:   coordinator,
		Controller:    controller,
	}, nil
}

func newAuthenticator(cfg domain.Config, log domain.Logger, remoteClient *remote.Client) (domain.Authenticator, error) {
	switch cfg.GetAuthProvider() {
	case "", "remote":
		return remoteClient, nil
	case "supabase":
		auth := supabase.NewAuthenticator(cfg, log)
		if err := auth.Initialize(); err != nil {
			return nil, err
		}
		return auth, nil
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.GetAuthProvider())
	}
}

// Close stops in-flight requests.
func (c *Container) Close() {
	c.Controller.Close()
}
