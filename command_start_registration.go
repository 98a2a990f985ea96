package register

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// StartRegistrationMessage carries the raw inbound user document and the
// caller's credential, forwarded verbatim to the resource server.
type StartRegistrationMessage struct {
	Payload    []byte `json:"payload" doc:"Raw user document as submitted"`
	Credential string `json:"-"`
	OnResponse func(*StartRegistrationResponse)
}

func (e StartRegistrationMessage) Type() string { return "registration.start" }

// StartRegistrationResponse is the workflow outcome. StatusCode mirrors the
// resource server verbatim on persistence failure and is OK on the full
// success path.
type StartRegistrationResponse struct {
	StatusCode int    `json:"status_code" example:"200" doc:"HTTP-equivalent outcome"`
	User       *User  `json:"user,omitempty" doc:"Created user representation"`
	Body       []byte `json:"-"`
}

type StartRegistrationHandler struct {
	cfg      *Config
	resource ResourceClient
	mailer   Mailer
	template *MailTemplate
	activity ActivitySink
	logger   Logger
	newToken func() string
}

// NewStartRegistrationHandler creates a handler with sane defaults.
func NewStartRegistrationHandler(cfg *Config, resource ResourceClient, mailer Mailer, template *MailTemplate) *StartRegistrationHandler {
	return &StartRegistrationHandler{
		cfg:      cfg,
		resource: resource,
		mailer:   mailer,
		template: template,
		activity: noopActivitySink{},
		logger:   defLogger{},
		newToken: NewActivationToken,
	}
}

// WithActivitySink sets the sink used to emit registration events.
func (h *StartRegistrationHandler) WithActivitySink(sink ActivitySink) *StartRegistrationHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *StartRegistrationHandler) WithLogger(logger Logger) *StartRegistrationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithTokenSource overrides activation token minting.
func (h *StartRegistrationHandler) WithTokenSource(source func() string) *StartRegistrationHandler {
	if source != nil {
		h.newToken = source
	}
	return h
}

func (h *StartRegistrationHandler) Execute(ctx context.Context, event StartRegistrationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration start",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *StartRegistrationHandler) execute(ctx context.Context, event StartRegistrationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := ParseUser(event.Payload)
	if err != nil {
		return err
	}

	email, found := user.PrimaryEmail()
	if !found {
		h.logger.Warn("registration payload without primary email rejected")
		return ErrMissingPrimaryEmail
	}

	token := h.newToken()
	h.prepareForRegistration(user, email, token)

	h.recordActivity(ctx, ActivityEventRegistrationStarted, user, nil)

	body, err := json.Marshal(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode user for resource server")
	}

	res, err := h.resource.CreateUser(ctx, body, event.Credential)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "resource server create failed")
	}

	// non-201 is an expected flow, not an application error; the remote
	// status travels back verbatim and the caller decides whether to retry
	if res.StatusCode != http.StatusCreated {
		h.logger.Info("resource server rejected user creation with status %d", res.StatusCode)
		h.respond(event, &StartRegistrationResponse{StatusCode: res.StatusCode, Body: res.Body})
		return nil
	}

	created := user
	if parsed, perr := ParseUser(res.Body); perr == nil {
		created = parsed
	}

	mail := ComposeActivationMail(h.cfg, h.template, email, user.Identifier(), token)
	if err := h.mailer.Send(ctx, mail); err != nil {
		// the user row now exists inactive with no way for the caller to
		// retry delivery; an operator has to re-issue the mail
		h.logger.Error("activation mail for persisted user %s failed: %v", user.Identifier(), err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not dispatch activation mail").
			WithTextCode(TextCodeMailDispatchFailed)
	}

	h.recordActivity(ctx, ActivityEventUserRegistered, created, map[string]any{
		"email": email,
	})

	h.respond(event, &StartRegistrationResponse{
		StatusCode: http.StatusOK,
		User:       created,
		Body:       res.Body,
	})

	return nil
}

// prepareForRegistration derives the activation-ready record: inactive,
// USER role only (caller-supplied roles are discarded), token attached
// under the configured extension URN.
func (h *StartRegistrationHandler) prepareForRegistration(user *User, email, token string) {
	user.Active = false
	user.Roles = []Role{{Value: RoleUser}}
	user.SetExtensionField(h.cfg.ExtensionURN, h.cfg.ActivationTokenField, token)
	user.EnsureIdentifier(email)
	user.NormalizePhoneNumbers()
}

func (h *StartRegistrationHandler) respond(event StartRegistrationMessage, res *StartRegistrationResponse) {
	if event.OnResponse != nil {
		event.OnResponse(res)
	}
}

func (h *StartRegistrationHandler) recordActivity(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   user.Identifier(),
			Type: "user",
		},
		UserID:     user.Identifier(),
		ToStatus:   StatusOf(user),
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}
