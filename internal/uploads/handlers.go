package uploads

import (
	"naviport-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

func (h *Handlers) signFor(c *fiber.Ctx, bucket string) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", fiber.StatusBadRequest, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.Context(), bucket, req.FileName, req.FileSize)
	if err != nil {
		switch err {
		case ErrExtensionNotAllowed, ErrFileTooLarge:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

// UploadOfferFile POST /api/v1/uploads/offer-file
func (h *Handlers) UploadOfferFile(c *fiber.Ctx) error {
	return h.signFor(c, BucketOfferFiles)
}

// UploadPdaFile POST /api/v1/uploads/pda-file
func (h *Handlers) UploadPdaFile(c *fiber.Ctx) error {
	return h.signFor(c, BucketPdaFiles)
}
