package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/http/response"
	"github.com/mindmirror/mindmirror-backend/internal/platform/apierr"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
	"github.com/mindmirror/mindmirror-backend/internal/services"
)

const msgFeelingRemoved = "Feeling removed successfully"

type FeelingHandler struct {
	log      *logger.Logger
	feelings services.FeelingService
}

func NewFeelingHandler(log *logger.Logger, feelings services.FeelingService) *FeelingHandler {
	return &FeelingHandler{log: log.With("handler", "FeelingHandler"), feelings: feelings}
}

type createFeelingForm struct {
	Text      string                `form:"text" binding:"required"`
	Mood      string                `form:"mood" binding:"required,mood"`
	Gratitude *string               `form:"gratitude"`
	Voice     *multipart.FileHeader `form:"voice"`
	Video     *multipart.FileHeader `form:"video"`
}

type updateFeelingBody struct {
	Text      string  `json:"text" binding:"required"`
	Mood      string  `json:"mood" binding:"required,mood"`
	Gratitude *string `json:"gratitude"`
}

type listFeelingsQuery struct {
	Mood   string `form:"mood" binding:"omitempty,mood"`
	Limit  int    `form:"limit" binding:"min=0"`
	Offset int    `form:"offset" binding:"min=0"`
}

// POST /api/feelings
func (h *FeelingHandler) Create(c *gin.Context) {
	var form createFeelingForm
	if err := c.ShouldBind(&form); err != nil {
		response.RespondAPIError(c, bindError(err))
		return
	}
	if mf := c.Request.MultipartForm; mf != nil {
		for _, field := range []string{"voice", "video"} {
			if len(mf.File[field]) > 1 {
				response.RespondAPIError(c, apierr.BadRequest(apierr.CodeInvalidRequest, fmt.Sprintf("at most one %s file is allowed", field)))
				return
			}
		}
	}

	in := services.CreateFeelingInput{
		Text:      form.Text,
		Mood:      form.Mood,
		Gratitude: form.Gratitude,
	}
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, part := range []struct {
		header *multipart.FileHeader
		dst    **services.Upload
	}{
		{form.Voice, &in.Voice},
		{form.Video, &in.Video},
	} {
		if part.header == nil {
			continue
		}
		f, err := part.header.Open()
		if err != nil {
			response.RespondAPIError(c, apierr.BadRequest(apierr.CodeInvalidRequest, "unreadable attachment"))
			return
		}
		opened = append(opened, f)
		*part.dst = &services.Upload{
			Filename:    part.header.Filename,
			ContentType: part.header.Header.Get("Content-Type"),
			Body:        f,
		}
	}

	created, err := h.feelings.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

// GET /api/feelings
func (h *FeelingHandler) List(c *gin.Context) {
	var q listFeelingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondAPIError(c, bindError(err))
		return
	}
	out, err := h.feelings.List(c.Request.Context(), services.ListFeelingsInput{
		Mood:   q.Mood,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/feelings/stats
func (h *FeelingHandler) Stats(c *gin.Context) {
	stats, err := h.feelings.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/feelings/:id
func (h *FeelingHandler) Get(c *gin.Context) {
	id, ok := feelingIDParam(c)
	if !ok {
		return
	}
	found, err := h.feelings.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, found)
}

// PUT /api/feelings/:id
func (h *FeelingHandler) Update(c *gin.Context) {
	id, ok := feelingIDParam(c)
	if !ok {
		return
	}
	var body updateFeelingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, bindError(err))
		return
	}
	updated, err := h.feelings.Update(c.Request.Context(), id, services.UpdateFeelingInput{
		Text:      body.Text,
		Mood:      body.Mood,
		Gratitude: body.Gratitude,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

// DELETE /api/feelings/:id
func (h *FeelingHandler) Delete(c *gin.Context) {
	id, ok := feelingIDParam(c)
	if !ok {
		return
	}
	if err := h.feelings.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondMessage(c, msgFeelingRemoved)
}

// feelingIDParam rejects a malformed id before the body is even read.
func feelingIDParam(c *gin.Context) (string, bool) {
	id, ok := types.ParseID(c.Param("id"))
	if !ok {
		response.RespondAPIError(c, apierr.BadRequest(apierr.CodeInvalidID, "Invalid feeling id"))
		return "", false
	}
	return id, true
}
