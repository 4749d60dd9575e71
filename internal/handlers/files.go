package handlers

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/fileshare/fileshare/internal/middleware"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/services"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// uploadField is the multipart field carrying the uploaded files.
const uploadField = "files"

type FilesHandler struct {
	Uploads *services.UploadService
	Files   *services.FileService
}

func NewFilesHandler(uploads *services.UploadService, files *services.FileService) *FilesHandler {
	return &FilesHandler{Uploads: uploads, Files: files}
}

type shareRequest struct {
	UserEmails []string `json:"userEmails"`
}

type linkRequest struct {
	ExpiresInHours *int `json:"expiresInHours"`
}

func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "multipart form with field \"files\" is required")
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no files uploaded")
	}

	inputs := make([]services.UploadInput, 0, len(headers))
	for _, header := range headers {
		inputs = append(inputs, services.UploadInput{
			Name:     filepath.Base(strings.TrimSpace(header.Filename)),
			MimeType: declaredContentType(header),
			Size:     header.Size,
		})
	}
	if err := h.Uploads.Validate(inputs); err != nil {
		return respondError(c, err)
	}

	for i, header := range headers {
		stream, err := header.Open()
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
		}
		defer stream.Close()
		inputs[i].Reader = stream
	}

	records, err := h.Uploads.Upload(c.UserContext(), currentUser.ID, inputs)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"files": records})
}

func declaredContentType(header *multipart.FileHeader) string {
	if contentType := header.Header.Get("Content-Type"); contentType != "" {
		return contentType
	}
	if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	files, err := h.Files.List(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondError(c, err)
	}
	if files == nil {
		files = []models.File{}
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"files": files})
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Files.Get(c.UserContext(), fileID, currentUser.ID, c.Query("link"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"file": file.ForViewer(currentUser.ID)})
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, obj, err := h.Files.Open(c.UserContext(), fileID, currentUser.ID, c.Query("link"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition("attachment", file.OriginalName))
	return c.SendStream(obj, int(obj.Size))
}

func (h *FilesHandler) RawURL(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	raw, err := h.Files.RawURL(c.UserContext(), fileID, currentUser.ID, c.Query("link"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, raw)
}

// Raw serves /uploads/:storedName for requests carrying a valid signature.
func (h *FilesHandler) Raw(c *fiber.Ctx) error {
	file, obj, err := h.Files.OpenSigned(c.UserContext(), c.Params("storedName"), c.Query("sig"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition("inline", file.OriginalName))
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendStream(obj, int(obj.Size))
}

func (h *FilesHandler) Share(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req shareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.Files.ShareWith(c.UserContext(), fileID, currentUser.ID, req.UserEmails)
	if err != nil {
		return respondMutationError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"file": file})
}

func (h *FilesHandler) Unshare(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	file, err := h.Files.Unshare(c.UserContext(), fileID, currentUser.ID, userID)
	if err != nil {
		return respondMutationError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"file": file})
}

func (h *FilesHandler) IssueLink(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req linkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	link, err := h.Files.IssueLink(c.UserContext(), fileID, currentUser.ID, req.ExpiresInHours)
	if err != nil {
		return respondMutationError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, link)
}

func (h *FilesHandler) RevokeLink(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	if err := h.Files.RevokeLink(c.UserContext(), fileID, currentUser.ID); err != nil {
		return respondMutationError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "link revoked"})
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	if err := h.Files.Delete(c.UserContext(), fileID, currentUser.ID); err != nil {
		return respondMutationError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "file deleted"})
}
