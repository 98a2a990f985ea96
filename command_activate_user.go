package register

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ActivateUserMessage carries the user identifier and activation token
// received from the activation link.
type ActivateUserMessage struct {
	UserID     string `json:"user_id" doc:"Identifier of the user to activate"`
	Token      string `json:"-"`
	Credential string `json:"-"`
	OnResponse func(*ActivateUserResponse)
}

func (e ActivateUserMessage) Type() string { return "registration.activate" }

// ActivateUserResponse reports the activation outcome. StatusCode defaults
// to Unauthorized and only moves off it when a step explicitly succeeds.
type ActivateUserResponse struct {
	StatusCode int  `json:"status_code" example:"200" doc:"HTTP-equivalent outcome"`
	Activated  bool `json:"activated"`
}

type ActivateUserHandler struct {
	cfg       *Config
	resource  ResourceClient
	lifecycle *Lifecycle
	activity  ActivitySink
	logger    Logger
}

// NewActivateUserHandler creates a handler with sane defaults.
func NewActivateUserHandler(cfg *Config, resource ResourceClient) *ActivateUserHandler {
	return &ActivateUserHandler{
		cfg:       cfg,
		resource:  resource,
		lifecycle: NewLifecycle(),
		activity:  noopActivitySink{},
		logger:    defLogger{},
	}
}

// WithLifecycle overrides the lifecycle used to drive the status change.
func (h *ActivateUserHandler) WithLifecycle(lifecycle *Lifecycle) *ActivateUserHandler {
	if lifecycle != nil {
		h.lifecycle = lifecycle
	}
	return h
}

// WithActivitySink sets the sink used to emit activation events.
func (h *ActivateUserHandler) WithActivitySink(sink ActivitySink) *ActivateUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ActivateUserHandler) WithLogger(logger Logger) *ActivateUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ActivateUserHandler) Execute(ctx context.Context, event ActivateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateUserHandler) execute(ctx context.Context, event ActivateUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// assume denial until every step has explicitly succeeded
	result := &ActivateUserResponse{StatusCode: http.StatusUnauthorized}

	res, err := h.resource.GetUser(ctx, event.UserID, event.Credential)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "resource server lookup failed")
	}

	if res.StatusCode != http.StatusOK {
		result.StatusCode = res.StatusCode
		h.respond(event, result)
		return nil
	}

	user, err := ParseUser(res.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "resource server returned unreadable user document")
	}

	stored := user.ExtensionField(h.cfg.ExtensionURN, h.cfg.ActivationTokenField)
	if !TokenMatches(stored, event.Token) {
		// the caller only ever sees the generic denial; which step failed
		// stays in the logs and the activity stream
		h.logger.Debug("activation token mismatch for user %s", event.UserID)
		h.recordActivity(ctx, ActivityEventActivationDenied, user, map[string]any{
			"reason": "token mismatch",
		})
		h.respond(event, result)
		return nil
	}

	actor := ActorRef{ID: event.UserID, Type: "user"}
	from := StatusOf(user)

	if err := h.lifecycle.Activate(ctx, actor, user); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			h.logger.Debug("activation for already-active user %s denied", event.UserID)
			h.respond(event, result)
			return nil
		}
		return err
	}

	user.SetExtensionField(h.cfg.ExtensionURN, h.cfg.ActivationTokenField, "")

	body, err := json.Marshal(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode activated user")
	}

	etag := res.ETag
	if etag == "" && user.Meta != nil {
		etag = user.Meta.Version
	}

	put, err := h.resource.ReplaceUser(ctx, event.UserID, body, event.Credential, etag)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "resource server update failed")
	}

	result.StatusCode = put.StatusCode
	result.Activated = put.StatusCode == http.StatusOK

	if result.Activated {
		h.recordActivity(ctx, ActivityEventUserActivated, user, map[string]any{
			"from": string(from),
		})
	} else {
		h.logger.Info("activation update for user %s rejected by resource server with status %d", event.UserID, put.StatusCode)
	}

	h.respond(event, result)
	return nil
}

func (h *ActivateUserHandler) respond(event ActivateUserMessage, res *ActivateUserResponse) {
	if event.OnResponse != nil {
		event.OnResponse(res)
	}
}

func (h *ActivateUserHandler) recordActivity(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   user.Identifier(),
			Type: "user",
		},
		UserID:     user.Identifier(),
		FromStatus: StatusOf(user),
		ToStatus:   StatusOf(user),
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during activation: %v", err)
	}
}
