package notes

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// PrincipalControllerRoutes names the account routes of one principal kind
type PrincipalControllerRoutes struct {
	Register string
	Login    string
	Profile  string
	Update   string
	Delete   string
	Logout   string
}

// AdminRoutes are the account routes mounted under /api/admin
var AdminRoutes = PrincipalControllerRoutes{
	Register: "/createadmin",
	Login:    "/adminlogin",
	Profile:  "/getadmin",
	Update:   "/updateadmin",
	Logout:   "/logout",
}

// UserRoutes are the account routes mounted under /api/auth
var UserRoutes = PrincipalControllerRoutes{
	Register: "/createuser",
	Login:    "/login",
	Profile:  "/getuser",
	Update:   "/updateuser",
	Delete:   "/deleteuser",
	Logout:   "/logout",
}

// PrincipalController serves the account routes for one principal kind.
// Empty route names are not mounted.
type PrincipalController struct {
	Logger   Logger
	Accounts *Accounts
	Auth     *RouteAuthenticator
	Routes   PrincipalControllerRoutes
}

type PrincipalControllerOption func(*PrincipalController) *PrincipalController

func WithControllerLogger(logger Logger) PrincipalControllerOption {
	return func(c *PrincipalController) *PrincipalController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

func WithAccounts(accounts *Accounts) PrincipalControllerOption {
	return func(c *PrincipalController) *PrincipalController {
		c.Accounts = accounts
		return c
	}
}

func WithRouteAuthenticator(auth *RouteAuthenticator) PrincipalControllerOption {
	return func(c *PrincipalController) *PrincipalController {
		c.Auth = auth
		return c
	}
}

func WithRoutes(routes PrincipalControllerRoutes) PrincipalControllerOption {
	return func(c *PrincipalController) *PrincipalController {
		c.Routes = routes
		return c
	}
}

func NewPrincipalController(opts ...PrincipalControllerOption) *PrincipalController {
	c := &PrincipalController{
		Logger: defLogger(),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts in principal controller...")
	}

	if c.Auth == nil {
		panic("Missing RouteAuthenticator in principal controller...")
	}

	return c
}

// RegisterPrincipalRoutes mounts the account routes on router
func RegisterPrincipalRoutes(router fiber.Router, opts ...PrincipalControllerOption) *PrincipalController {
	controller := NewPrincipalController(opts...)
	routes := controller.Routes
	protected := controller.Auth.ProtectedRoute(controller.Accounts.Role())

	if routes.Register != "" {
		router.Post(routes.Register, controller.Register)
	}
	if routes.Login != "" {
		router.Post(routes.Login, controller.Login)
	}
	if routes.Profile != "" {
		router.Post(routes.Profile, protected, controller.Profile)
		router.Get(routes.Profile, protected, controller.Profile)
	}
	if routes.Update != "" {
		router.Put(routes.Update, protected, controller.Update)
	}
	if routes.Delete != "" {
		router.Delete(routes.Delete, protected, controller.Delete)
	}
	if routes.Logout != "" && controller.Auth.Revocable() {
		router.Post(routes.Logout, protected, controller.Logout)
	}

	return controller
}

// ProfileResponse is the public view of a principal
type ProfileResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

func profileResponse(p *Principal) ProfileResponse {
	return ProfileResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
		Date:  p.CreatedAt,
	}
}

func profileResponses(ps []*Principal) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, profileResponse(p))
	}
	return out
}

func (a *PrincipalController) Register(c *fiber.Ctx) error {
	payload := RegisterPayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	token, _, err := a.Accounts.Register(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "authToken": token})
}

func (a *PrincipalController) Login(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	token, err := a.Accounts.Login(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "authToken": token})
}

func (a *PrincipalController) Profile(c *fiber.Ctx) error {
	id, err := identityOrFail(c, a.Accounts.Role())
	if err != nil {
		return err
	}

	principal, err := a.Accounts.Profile(c.UserContext(), id.ID)
	if err != nil {
		return err
	}

	return c.JSON(profileResponse(principal))
}

func (a *PrincipalController) Update(c *fiber.Ctx) error {
	id, err := identityOrFail(c, a.Accounts.Role())
	if err != nil {
		return err
	}

	payload := UpdateProfilePayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	if _, err := a.Accounts.UpdateProfile(c.UserContext(), id.ID, payload); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Details updated successfully"})
}

func (a *PrincipalController) Delete(c *fiber.Ctx) error {
	id, err := identityOrFail(c, a.Accounts.Role())
	if err != nil {
		return err
	}

	if err := a.Accounts.Delete(c.UserContext(), id.ID); err != nil {
		return err
	}

	if a.Auth.Revocable() {
		if err := a.Auth.Logout(c.UserContext(), id); err != nil {
			a.Logger.Warn("failed to revoke token of deleted principal", "error", err)
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Account deleted successfully"})
}

func (a *PrincipalController) Logout(c *fiber.Ctx) error {
	id, err := identityOrFail(c, a.Accounts.Role())
	if err != nil {
		return err
	}

	if err := a.Auth.Logout(c.UserContext(), id); err != nil {
		return err
	}

	a.Accounts.emitAuthEvent(c.UserContext(), ActivityEventLogout, id.ID, nil)

	return c.JSON(fiber.Map{"success": true})
}
