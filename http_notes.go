package notes

import "github.com/gofiber/fiber/v2"

// NotesController serves the user note routes
type NotesController struct {
	Notes *NoteService
	Auth  *RouteAuthenticator
}

// RegisterNoteRoutes mounts the note routes on router
func RegisterNoteRoutes(router fiber.Router, c *NotesController) {
	if c.Notes == nil || c.Auth == nil {
		panic("Missing dependencies in notes controller...")
	}

	protected := c.Auth.ProtectedRoute(RoleUser)

	router.Get("/fetchallnotes", protected, c.FetchAll)
	router.Post("/addnote", protected, c.Add)
	router.Put("/updatenote/:id", protected, c.Update)
	router.Delete("/deletenote/:id", protected, c.Delete)
}

func (n *NotesController) FetchAll(c *fiber.Ctx) error {
	id, err := identityOrFail(c, RoleUser)
	if err != nil {
		return err
	}

	notes, err := n.Notes.ListOwned(c.UserContext(), id.ID)
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (n *NotesController) Add(c *fiber.Ctx) error {
	id, err := identityOrFail(c, RoleUser)
	if err != nil {
		return err
	}

	payload := NotePayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	note, err := n.Notes.Add(c.UserContext(), id.ID, payload)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (n *NotesController) Update(c *fiber.Ctx) error {
	id, err := identityOrFail(c, RoleUser)
	if err != nil {
		return err
	}

	payload := NoteUpdatePayload{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}

	note, err := n.Notes.Update(c.UserContext(), id.ID, c.Params("id"), payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"note": note})
}

func (n *NotesController) Delete(c *fiber.Ctx) error {
	id, err := identityOrFail(c, RoleUser)
	if err != nil {
		return err
	}

	note, err := n.Notes.Delete(c.UserContext(), id.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"Success": "Note has been deleted", "note": note})
}
