package notes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminController serves the management routes. Every route requires an
// admin token.
type AdminController struct {
	Logger Logger
	Admins *Accounts
	Users  *Accounts
	Notes  *NoteService
	Infos  *Infos
	Auth   *RouteAuthenticator
}

// RegisterAdminRoutes mounts the management routes on router. The audit log
// route is mounted only when c.Infos is set.
func RegisterAdminRoutes(router fiber.Router, c *AdminController) {
	if c.Admins == nil || c.Users == nil || c.Notes == nil || c.Auth == nil {
		panic("Missing dependencies in admin controller...")
	}
	c.Logger = normalizeLogger(c.Logger)

	protected := c.Auth.ProtectedRoute(RoleAdmin)

	router.Get("/allnotes", protected, c.AllNotes)
	router.Get("/allusers", protected, c.AllUsers)
	router.Get("/notes/:userId", protected, c.NotesForUser)
	router.Get("/onlynotes", protected, c.OnlyNotes)
	router.Delete("/notes/:noteId", protected, c.DeleteNote)
	router.Delete("/users/:userId", protected, c.DeleteUser)
	router.Get("/alladmins", protected, c.AllAdmins)
	router.Delete("/deleteadmin/:adminId", protected, c.DeleteAdmin)

	if c.Infos != nil {
		router.Post("/createinfo", protected, c.CreateInfo)
	}
}

func (a *AdminController) AllNotes(c *fiber.Ctx) error {
	notes, err := a.Notes.AllWithOwners(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (a *AdminController) OnlyNotes(c *fiber.Ctx) error {
	notes, err := a.Notes.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (a *AdminController) NotesForUser(c *fiber.Ctx) error {
	notes, err := a.Notes.ForUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (a *AdminController) DeleteNote(c *fiber.Ctx) error {
	if err := a.Notes.DeleteAny(c.UserContext(), c.Params("noteId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}

func (a *AdminController) AllUsers(c *fiber.Ctx) error {
	users, err := a.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(profileResponses(users))
}

func (a *AdminController) DeleteUser(c *fiber.Ctx) error {
	if err := a.Users.Delete(c.UserContext(), c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (a *AdminController) AllAdmins(c *fiber.Ctx) error {
	admins, err := a.Admins.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(profileResponses(admins))
}

func (a *AdminController) DeleteAdmin(c *fiber.Ctx) error {
	if err := a.Admins.Delete(c.UserContext(), c.Params("adminId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}

func (a *AdminController) CreateInfo(c *fiber.Ctx) error {
	id, err := identityOrFail(c, RoleAdmin)
	if err != nil {
		return err
	}

	payload := InfoPayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}
	if err := Validate(payload); err != nil {
		return err
	}

	adminID, err := uuid.Parse(id.ID)
	if err != nil {
		return derive(ErrNotFound, MsgAdminNotFound, err)
	}

	if _, err := a.Admins.Profile(c.UserContext(), id.ID); err != nil {
		return err
	}

	if _, err := a.Infos.Create(c.UserContext(), &Info{
		AdminID:     adminID,
		Title:       payload.Title,
		Description: payload.Description,
		CreatedAt:   a.Admins.now().UTC(),
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Info created successfully"})
}
