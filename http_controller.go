package register

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultCredentialKey is the locals key middleware can use to hand the
// caller's raw credential to the controller.
const DefaultCredentialKey = "authorization"

func RegisterRegistrationRoutes[T any](app router.Router[T], opts ...RegistrationControllerOption) {

	controller := NewRegistrationController(opts...)

	app.
		Get(controller.Routes.Register,
			controller.Show,
		).
		SetName("register.get")

	app.
		Post(
			controller.Routes.Create,
			controller.Create,
		).
		SetName("register.create.post")

	app.Get(controller.Routes.Activate, controller.Activate).
		SetName("register.activate.get")
}

type RegistrationControllerRoutes struct {
	Register string
	Create   string
	Activate string
}

type RegistrationControllerViews struct {
	Register string
}

type RegistrationController struct {
	Debug         bool
	Logger        Logger
	Start         *StartRegistrationHandler
	Activator     *ActivateUserHandler
	Routes        *RegistrationControllerRoutes
	Views         *RegistrationControllerViews
	CredentialKey string
	ErrorHandler  router.ErrorHandler
}

type RegistrationControllerOption func(*RegistrationController) *RegistrationController

func NewRegistrationController(opts ...RegistrationControllerOption) *RegistrationController {
	c := &RegistrationController{
		Logger:        defLogger{},
		ErrorHandler:  defaultErrHandler,
		CredentialKey: DefaultCredentialKey,
		Routes: &RegistrationControllerRoutes{
			Register: "/register",
			Create:   "/register/create",
			Activate: "/register/activate",
		},
		Views: &RegistrationControllerViews{
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Start == nil {
		panic("Missing StartRegistrationHandler in registration controller...")
	}

	if c.Activator == nil {
		panic("Missing ActivateUserHandler in registration controller...")
	}

	return c
}

// WithStartHandler sets the handler driving POST create requests.
func WithStartHandler(h *StartRegistrationHandler) RegistrationControllerOption {
	return func(c *RegistrationController) *RegistrationController {
		c.Start = h
		return c
	}
}

// WithActivateHandler sets the handler driving GET activate requests.
func WithActivateHandler(h *ActivateUserHandler) RegistrationControllerOption {
	return func(c *RegistrationController) *RegistrationController {
		c.Activator = h
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) RegistrationControllerOption {
	return func(c *RegistrationController) *RegistrationController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerDebug toggles request/response dumps.
func WithControllerDebug(debug bool) RegistrationControllerOption {
	return func(c *RegistrationController) *RegistrationController {
		c.Debug = debug
		return c
	}
}

// Show renders the registration form.
func (a *RegistrationController) Show(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": nil,
	})
}

// Create accepts a raw user document, runs the registration workflow, and
// answers with the created user or the remote rejection status.
func (a *RegistrationController) Create(ctx router.Context) error {
	var res *StartRegistrationResponse

	msg := StartRegistrationMessage{
		Payload:    ctx.Body(),
		Credential: a.credential(ctx),
		OnResponse: func(resp *StartRegistrationResponse) {
			res = resp
		},
	}

	if err := a.Start.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("registration create error: %v", err)
		return a.renderError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTER CREATE ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("==============================")
	}

	if res.StatusCode != http.StatusOK {
		return ctx.Status(res.StatusCode).Send(res.Body)
	}

	return ctx.JSON(http.StatusOK, res.User)
}

// Activate consumes the activation link. Anything other than a full match
// answers with the generic denial.
func (a *RegistrationController) Activate(ctx router.Context) error {
	var res *ActivateUserResponse

	msg := ActivateUserMessage{
		UserID:     ctx.Query("user", ""),
		Token:      ctx.Query("token", ""),
		Credential: a.credential(ctx),
		OnResponse: func(resp *ActivateUserResponse) {
			res = resp
		},
	}

	if err := a.Activator.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("registration activate error: %v", err)
		return a.renderError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTER ACTIVATE ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("================================")
	}

	return ctx.NoContent(res.StatusCode)
}

// credential pulls the raw Authorization material, preferring a value
// staged by upstream middleware over the header itself.
func (a *RegistrationController) credential(ctx router.Context) string {
	if raw, ok := ctx.Locals(a.CredentialKey).(string); ok && raw != "" {
		return raw
	}
	return ctx.GetString(router.HeaderAuthorization, "")
}

func (a *RegistrationController) renderError(ctx router.Context, err error) error {
	if IsValidationError(err) {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return ctx.JSON(http.StatusBadRequest, router.ViewContext{
				"error": rich.Message,
				"code":  rich.TextCode,
			})
		}
		return ctx.JSON(http.StatusBadRequest, router.ViewContext{
			"error": err.Error(),
		})
	}

	return a.ErrorHandler(ctx, err)
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, router.ViewContext{
		"error": "internal error",
	})
}
