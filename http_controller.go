package admin

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AdminControllerRoutes are the paths the console is served under
type AdminControllerRoutes struct {
	Home       string
	Login      string
	Logout     string
	Users      string
	RoleChange string
	DeleteUser string
}

// AdminControllerViews are the template names rendered per state
type AdminControllerViews struct {
	Login string
	Users string
	Error string
}

// AdminController is the HTTP surface over the gate and the directory view
type AdminController struct {
	Debug     bool
	Logger    Logger
	Gate      *AccessGate
	Directory *Directory
	Routes    *AdminControllerRoutes
	Views     *AdminControllerViews
}

type AdminControllerOption func(*AdminController) *AdminController

func NewAdminController(opts ...AdminControllerOption) *AdminController {
	c := &AdminController{
		Logger: defLogger{},
		Routes: &AdminControllerRoutes{
			Home:       "/",
			Login:      "/login",
			Logout:     "/logout",
			Users:      "/users",
			RoleChange: "/role-change",
			DeleteUser: "/delete-user",
		},
		Views: &AdminControllerViews{
			Login: "login",
			Users: "users",
			Error: "errors/500",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Gate == nil {
		panic("Missing AccessGate in admin controller...")
	}

	if c.Directory == nil {
		panic("Missing Directory in admin controller...")
	}

	return c
}

// RegisterAdminRoutes mounts the console routes on the given app
func RegisterAdminRoutes(app *fiber.App, opts ...AdminControllerOption) *AdminController {
	c := NewAdminController(opts...)

	app.Get(c.Routes.Login, c.LoginShow)
	app.Post(c.Routes.Login, c.LoginPost)
	app.Get(c.Routes.Logout, c.LogOut)

	app.Get(c.Routes.Home, c.RequirePage, c.UsersPage)
	app.Get(c.Routes.Users, c.RequireAdmission, c.UsersIndex)
	app.All(c.Routes.RoleChange, c.RequireAdmission, c.RoleChangePost)
	app.All(c.Routes.DeleteUser, c.RequireAdmission, c.DeleteUserPost)

	return c
}

// RequireAdmission guards the JSON endpoints; a non-admitted gate answers
// 401 without touching the store.
func (a *AdminController) RequireAdmission(c *fiber.Ctx) error {
	if a.Gate.Admitted() {
		return c.Next()
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrAdminRequired.Error(),
	})
}

// RequirePage guards the HTML pages; a non-admitted gate re-runs the
// admission check once and falls back to the credential-entry surface.
func (a *AdminController) RequirePage(c *fiber.Ctx) error {
	if a.Gate.Admitted() {
		return c.Next()
	}

	if a.Gate.Check(c.Context()) == StateAdmitted {
		return c.Next()
	}

	return c.Render(a.Views.Login, fiber.Map{
		"error":  a.Gate.Reason(),
		"record": nil,
	})
}

// LoginShow renders the credential-entry surface
func (a *AdminController) LoginShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Login, fiber.Map{
		"error":  "",
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginPost exchanges credentials through the gate. Denial never escapes as
// a server error; it re-renders the credential surface with an inline
// reason.
func (a *AdminController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(a.Views.Login, fiber.Map{
			"error":  "failed to parse form",
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Render(a.Views.Login, fiber.Map{
			"error":  err.Error(),
			"record": payload,
		})
	}

	if a.Debug {
		fmt.Println("======= ADMIN LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("==========================")
	}

	if err := a.Gate.Authenticate(c.Context(), payload.Email, payload.Password); err != nil {
		a.Logger.Info("admission denied for %s: %v", payload.Email, err)
		return c.Render(a.Views.Login, fiber.Map{
			"error":  err.Error(),
			"record": payload,
		})
	}

	return c.Redirect(a.Routes.Home, fiber.StatusSeeOther)
}

// LogOut destroys the session; the invalidation event moves the gate to
// denied before the redirect lands.
func (a *AdminController) LogOut(c *fiber.Ctx) error {
	if err := a.Gate.SignOut(c.Context()); err != nil {
		a.Logger.Warn("sign out failed: %v", err)
	}
	return c.Redirect(a.Routes.Login, fiber.StatusTemporaryRedirect)
}

// UsersPage renders the directory table from a fresh fetch
func (a *AdminController) UsersPage(c *fiber.Ctx) error {
	records, err := a.Directory.Load(c.Context())
	if err != nil {
		return c.Render(a.Views.Error, fiber.Map{
			"message": err.Error(),
		})
	}

	return c.Render(a.Views.Users, fiber.Map{
		"users": records,
		"roles": AssignableRoles(),
	})
}

// UsersIndex returns the account list as JSON
func (a *AdminController) UsersIndex(c *fiber.Ctx) error {
	records, err := a.Directory.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(records)
}

// RoleChangePost applies a confirmed role change. Missing fields answer 400
// with no store call; store failures surface the reported reason verbatim
// as 500; a confirmed write answers {success: true}.
func (a *AdminController) RoleChangePost(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method Not Allowed",
		})
	}

	payload := new(ChangeRoleMessage)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse body",
		})
	}

	if err := a.Directory.ApplyRoleChange(c.Context(), *payload); err != nil {
		return a.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteUserPost removes the target account with the same envelope as
// role changes.
func (a *AdminController) DeleteUserPost(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method Not Allowed",
		})
	}

	payload := new(DeleteAccountMessage)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse body",
		})
	}

	if err := a.Directory.ApplyDelete(c.Context(), *payload); err != nil {
		return a.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// mutationError converts workflow failures into the response envelope.
// Validation failures are client errors; everything else, including the
// zero-rows anomaly, reports the reason without masking it.
func (a *AdminController) mutationError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": richErr.Message,
		})
	}

	a.Logger.Error("mutation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
