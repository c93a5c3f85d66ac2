package controller

import (
	"errors"

	"typst-collab-be/internal/dto"
	"typst-collab-be/internal/pkg/serverutils"
	"typst-collab-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProjectController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Compile(ctx *fiber.Ctx) error
}

type projectController struct {
	service service.IProjectService
	compile service.ICompileService
}

func NewProjectController(svc service.IProjectService, compile service.ICompileService) IProjectController {
	return &projectController{service: svc, compile: compile}
}

func (c *projectController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/projects/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Post("/compile", c.Compile)
	h.Get(":id", c.Show)
	h.Put(":id/tree", c.Save)
	h.Post(":id/share", c.Share)
	h.Delete(":id", c.Delete)
}

func userID(ctx *fiber.Ctx) uuid.UUID {
	idStr, _ := ctx.Locals("user_id").(string)
	id, _ := uuid.Parse(idStr)
	return id
}

func (c *projectController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), userID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create project", res))
}

func (c *projectController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.Context(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all projects", res))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
	}

	res, err := c.service.Show(ctx.Context(), userID(ctx), id)
	if err != nil {
		return accessError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show project", res))
}

func (c *projectController) Save(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
	}

	var req dto.SaveTreeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.Tree == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing tree")
	}

	if err := c.service.SaveTree(ctx.Context(), userID(ctx), id, req.Tree); err != nil {
		return accessError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Snapshot queued", nil))
}

func (c *projectController) Share(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
	}

	var req dto.ShareProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Share(ctx.Context(), userID(ctx), id, req.Email); err != nil {
		return accessError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Project shared", nil))
}

func (c *projectController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
	}

	if err := c.service.Delete(ctx.Context(), userID(ctx), id); err != nil {
		return accessError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Project deleted", nil))
}

// Compile renders the posted tree through the external compiler and
// streams the result back. Compiler failures are forwarded with their
// structure intact so the client can show them in the output pane.
func (c *projectController) Compile(ctx *fiber.Ctx) error {
	var req dto.CompileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.FileTree == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing fileTree")
	}

	out, err := c.compile.Render(ctx.Context(), req.FileTree, req.Format)
	if err != nil {
		var compileErr *service.CompileError
		if errors.As(err, &compileErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(compileErr)
		}
		return err
	}

	if req.Format == "pdf" {
		ctx.Set("Content-Type", "application/pdf")
	} else {
		ctx.Set("Content-Type", "image/svg+xml")
	}
	return ctx.Send(out)
}

func accessError(err error) error {
	if errors.Is(err, service.ErrProjectAccess) {
		return fiber.NewError(fiber.StatusForbidden, "No access to this project")
	}
	return err
}
