package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/form"
	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/listing"
	"github.com/cppla/postboard/live"
	"github.com/cppla/postboard/middleware"
	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/utils"
	"github.com/cppla/postboard/views"
)

// View names mounted on a session.
const (
	viewList   = "list"
	viewDetail = "detail"
	viewCreate = "create"
)

// PageController renders the HTML pages and drives their per-session views.
type PageController struct {
	gw  gateway.Gateway
	hub *live.Hub
	log *zap.Logger
}

// NewPageController creates a PageController.
func NewPageController(gw gateway.Gateway, hub *live.Hub, logger *zap.Logger) *PageController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageController{gw: gw, hub: hub, log: logger}
}

func layout(v *live.View) views.Layout {
	cfg := config.Get()
	l := views.Layout{Brand: cfg.BrandName, Title: cfg.HeaderTitle}
	if v != nil {
		l.Toast = v.Toast()
	}
	return l
}

// listActions turns the query string into reducer actions. Only parameters
// that are present produce an action.
func listActions(ctx *gin.Context) []listing.Action {
	var actions []listing.Action
	if q, ok := ctx.GetQuery("q"); ok {
		actions = append(actions, listing.SetSearch{Term: q})
	}
	if a, ok := ctx.GetQuery("author"); ok {
		// unparseable ids fall back to All
		f, _ := listing.ParseAuthorFilter(a)
		actions = append(actions, listing.SetAuthor{Filter: f})
	}
	if p, ok := ctx.GetQuery("page"); ok {
		if n, ok := postID(p); ok {
			actions = append(actions, listing.GoToPage{Page: n})
		}
	}
	return actions
}

// List renders the filtered, paginated post list.
func (p *PageController) List(ctx *gin.Context) {
	view, _ := middleware.CurrentSession(ctx).Enter(viewList)
	actions := listActions(ctx)
	state := view.Update(func(cur any) any {
		s, ok := cur.(listing.ViewState)
		if !ok {
			s = listing.InitialState()
		}
		return listing.Reduce(s, actions...)
	}).(listing.ViewState)

	posts, users, err := loadPostsAndUsers(ctx.Request.Context(), p.gw)
	if err != nil {
		// the page still renders, with the empty state
		p.log.Warn("load post list failed", zap.Error(err))
	}

	page := state.Visible(posts, config.Get().PageSize)
	rows := make([]views.PostRow, 0, len(page.Items))
	for _, post := range page.Items {
		rows = append(rows, views.PostRow{Post: post, Author: models.AuthorName(users, post.UserID)})
	}

	ctx.HTML(http.StatusOK, "list.html", views.ListPage{
		Layout: layout(view),
		Search: state.Search,
		Author: state.Author,
		Users:  users,
		Rows:   rows,
		Pager:  listing.NewPager(page.Page, page.TotalPages),
	})
}

// Detail renders one post with its author.
func (p *PageController) Detail(ctx *gin.Context) {
	view, _ := middleware.CurrentSession(ctx).Enter(viewDetail)
	data := views.DetailPage{Layout: layout(view)}

	id, ok := postID(ctx.Param("id"))
	if !ok {
		ctx.HTML(http.StatusNotFound, "detail.html", data)
		return
	}

	post, users, postErr, usersErr := loadPostAndUsers(ctx.Request.Context(), p.gw, id)
	if usersErr != nil {
		p.log.Warn("load users failed", zap.Error(usersErr))
	}
	if postErr != nil {
		status := http.StatusNotFound
		if !errors.Is(postErr, gateway.ErrNotFound) {
			p.log.Warn("load post failed", zap.Int("id", id), zap.Error(postErr))
			status = http.StatusBadGateway
		}
		ctx.HTML(status, "detail.html", data)
		return
	}

	data.Found = true
	data.Post = post
	data.Author = models.AuthorName(users, post.UserID)
	ctx.HTML(http.StatusOK, "detail.html", data)
}

// createController returns the form controller of the mounted create view,
// mounting one when the session is elsewhere.
func (p *PageController) createController(ctx *gin.Context) (*live.View, *form.Controller) {
	view, fresh := middleware.CurrentSession(ctx).Enter(viewCreate)
	if fc, ok := view.State().(*form.Controller); ok && !fresh {
		// an earlier load failed: every visit retries until authors arrive
		if len(fc.Users()) == 0 {
			if users, err := p.loadUsers(ctx); err == nil {
				fc.SetUsers(users)
			}
		}
		return view, fc
	}

	users, _ := p.loadUsers(ctx)
	cfg := config.Get()
	fc := form.New(form.Options{
		Gateway:       p.gw,
		Users:         users,
		Scheduler:     view,
		Navigator:     view,
		Notifier:      view,
		NavigateDelay: cfg.NavigateDelay(),
		ReturnPath:    "/",
		Logger:        p.log,
	})
	view.SetState(fc)
	return view, fc
}

func (p *PageController) loadUsers(ctx *gin.Context) ([]models.User, error) {
	users, err := p.gw.ListUsers(ctx.Request.Context())
	if err != nil {
		p.log.Warn("load users failed", zap.Error(err))
	}
	return users, err
}

func (p *PageController) renderCreate(ctx *gin.Context, status int, view *live.View, fc *form.Controller) {
	snap := fc.Snapshot()
	ctx.HTML(status, "create.html", views.CreatePage{
		Layout:         layout(view),
		Draft:          snap.Draft,
		Users:          fc.Users(),
		FieldErrors:    snap.FieldErrors,
		APIError:       snap.APIError,
		SubmitDisabled: snap.SubmitDisabled,
	})
}

// CreateForm renders the create page.
func (p *PageController) CreateForm(ctx *gin.Context) {
	view, fc := p.createController(ctx)
	p.renderCreate(ctx, http.StatusOK, view, fc)
}

// CreateSubmit validates and submits the posted draft.
func (p *PageController) CreateSubmit(ctx *gin.Context) {
	session := middleware.CurrentSession(ctx)
	view, fc := p.createController(ctx)

	var draft models.Draft
	if err := ctx.ShouldBind(&draft); err != nil {
		p.log.Debug("bind draft failed", zap.Error(err))
	}

	if !utils.SubmitGuardTry(session.ID, config.Get().APITimeout()*2) {
		p.renderCreate(ctx, http.StatusConflict, view, fc)
		return
	}
	defer utils.SubmitGuardRelease(session.ID)

	if err := fc.Edit(draft); err != nil {
		p.renderCreate(ctx, http.StatusConflict, view, fc)
		return
	}

	_, err := fc.Submit(ctx.Request.Context())
	var ve *form.ValidationError
	switch {
	case err == nil:
		p.renderCreate(ctx, http.StatusOK, view, fc)
	case errors.As(err, &ve):
		p.renderCreate(ctx, http.StatusUnprocessableEntity, view, fc)
	case errors.Is(err, form.ErrSubmitInFlight), errors.Is(err, form.ErrClosed):
		p.renderCreate(ctx, http.StatusConflict, view, fc)
	default:
		p.renderCreate(ctx, http.StatusBadGateway, view, fc)
	}
}

// DismissError hides the submission failure banner and returns to the form.
func (p *PageController) DismissError(ctx *gin.Context) {
	view, _ := middleware.CurrentSession(ctx).Enter(viewCreate)
	if fc, ok := view.State().(*form.Controller); ok {
		fc.DismissError()
	}
	ctx.Redirect(http.StatusSeeOther, "/create")
}

// Live attaches the session's event stream to a websocket.
func (p *PageController) Live(ctx *gin.Context) {
	p.hub.ServeWS(ctx.Writer, ctx.Request, middleware.CurrentSession(ctx))
}
