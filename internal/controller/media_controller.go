package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	Service *service.MediaService
}

func NewMediaController(svc *service.MediaService) *MediaController {
	return &MediaController{Service: svc}
}

// @Summary Upload page media
// @Description Stores an audio, video or document file and returns its URL for use in a page
// @Tags Media admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind formData string true "audio, video or document"
// @Param file formData file true "File"
// @Success 201 {object} util.Response{data=service.MediaUpload}
// @Failure 400 {object} util.Response
// @Router /api/media/admin/upload [post]
func (c *MediaController) Upload(ctx *gin.Context) {
	kind := service.MediaKind(ctx.PostForm("kind"))
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	res, err := c.Service.Upload(ctx.Request.Context(), kind, header)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}
