package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/form"
	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/listing"
	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/utils"
)

// APIController exposes the post list, detail and create operations as JSON.
type APIController struct {
	gw  gateway.Gateway
	log *zap.Logger
}

// NewAPIController creates an APIController.
func NewAPIController(gw gateway.Gateway, logger *zap.Logger) *APIController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIController{gw: gw, log: logger}
}

// ListPosts returns one page of posts filtered by search and author.
func (a *APIController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().PageSize)
	search := strings.TrimSpace(ctx.Query("search"))
	author, err := listing.ParseAuthorFilter(ctx.Query("author"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid author filter")
		return
	}

	posts, err := a.gw.ListPosts(ctx.Request.Context())
	if err != nil {
		a.log.Warn("list posts failed", zap.Error(err))
		utils.Error(ctx, http.StatusBadGateway, 50210, "failed to list posts")
		return
	}

	result := listing.VisiblePage(posts, search, author, page, pageSize)
	utils.Success(ctx, gin.H{
		"items": result.Items,
		"pagination": gin.H{
			"page":        result.Page,
			"page_size":   result.PageSize,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// GetPost returns a post together with its author's name.
func (a *APIController) GetPost(ctx *gin.Context) {
	id, ok := postID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40410, "Post not found")
		return
	}

	post, users, postErr, usersErr := loadPostAndUsers(ctx.Request.Context(), a.gw, id)
	if usersErr != nil {
		a.log.Warn("load users failed", zap.Error(usersErr))
	}
	if postErr != nil {
		if errors.Is(postErr, gateway.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "Post not found")
			return
		}
		a.log.Warn("get post failed", zap.Int("id", id), zap.Error(postErr))
		utils.Error(ctx, http.StatusBadGateway, 50211, "failed to load post")
		return
	}

	utils.Success(ctx, gin.H{
		"post":   post,
		"author": models.AuthorName(users, post.UserID),
	})
}

// ListUsers returns every author.
func (a *APIController) ListUsers(ctx *gin.Context) {
	users, err := a.gw.ListUsers(ctx.Request.Context())
	if err != nil {
		a.log.Warn("list users failed", zap.Error(err))
		utils.Error(ctx, http.StatusBadGateway, 50212, "failed to list users")
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

// createRequest accepts userId as either a JSON string or number.
type createRequest struct {
	Title  string          `json:"title"`
	Body   string          `json:"body"`
	UserID json.RawMessage `json:"userId"`
}

func (r createRequest) draft() models.Draft {
	d := models.Draft{Title: r.Title, Body: r.Body}
	raw := bytes.TrimSpace(r.UserID)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		_ = json.Unmarshal(raw, &d.UserID)
	default:
		d.UserID = string(raw)
	}
	return d
}

// CreatePost validates the draft and creates the post remotely.
func (a *APIController) CreatePost(ctx *gin.Context) {
	var req createRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	users, err := a.gw.ListUsers(ctx.Request.Context())
	if err != nil {
		// validation then only checks the id's shape
		a.log.Warn("load users failed", zap.Error(err))
	}

	payload, err := form.Validate(req.draft(), users)
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			utils.ErrorWithData(ctx, http.StatusUnprocessableEntity, 42210, "validation failed", gin.H{"errors": ve.Fields})
			return
		}
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid draft")
		return
	}

	post, err := a.gw.CreatePost(ctx.Request.Context(), payload)
	if err != nil {
		msg := gateway.Message(err)
		if msg == "" {
			msg = form.FallbackError
		}
		utils.Error(ctx, http.StatusBadGateway, 50220, msg)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}
