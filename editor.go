package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/views"
)

// Editor actions posted by the form's buttons. Block actions carry the
// block id after a colon, e.g. "move_up:3f2c...".
const (
	actionAddBlock    = "add_block"
	actionRemoveBlock = "remove_block"
	actionMoveUp      = "move_up"
	actionMoveDown    = "move_down"
	actionSaveDraft   = "save_draft"
	actionPublish     = "publish"
)

const newItemID = "new"

func (a *App) handleEditor(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	it, err := a.loadEditorItem(c, coll)
	if err != nil {
		return err
	}
	return a.renderEditor(c, http.StatusOK, views.EditorState{
		Collection: coll,
		Item:       it,
		NewKind:    content.Text,
		Message:    c.QueryParam("msg"),
	})
}

// loadEditorItem returns a blank item for "new" and the stored one otherwise.
func (a *App) loadEditorItem(c echo.Context, coll content.Collection) (content.Item, error) {
	id := c.Param("id")
	if id == newItemID {
		return content.NewItem(), nil
	}
	return a.Library.Get(c.Request().Context(), coll, id, ViewerFrom(c))
}

// handleEditorPost applies one editor action. Block edits only change the
// form state; nothing is stored until save_draft or publish.
func (a *App) handleEditorPost(c echo.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	it, err := a.loadEditorItem(c, coll)
	if err != nil {
		return err
	}

	st := views.EditorState{Collection: coll}
	it.Title = c.FormValue("title")
	it.Excerpt = c.FormValue("excerpt")
	it.FeaturedImageURL = strings.TrimSpace(c.FormValue("featured_image_url"))
	it.Year = strings.TrimSpace(c.FormValue("year"))
	it.Tags = content.ParseTags(c.FormValue("tags"))
	if raw := c.FormValue("blocks"); raw != "" {
		var blocks []content.Block
		if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
			st.Error = "The block list could not be read; showing the last saved content."
		} else {
			it.Content = blocks
		}
	}

	st.NewKind, _ = content.ParseKind(c.FormValue("new_block_type"))
	if st.NewKind == "" {
		st.NewKind = content.Text
	}
	st.NewPayload = c.FormValue("new_block_content")

	code := http.StatusOK
	action, blockID, _ := strings.Cut(c.FormValue("action"), ":")
	switch action {
	case actionAddBlock:
		kind, err := content.ParseKind(c.FormValue("new_block_type"))
		if err != nil {
			st.Error = "Unknown block type."
			break
		}
		before := len(it.Content)
		it.Content = content.Append(it.Content, kind, st.NewPayload)
		if len(it.Content) > before {
			st.NewPayload = ""
		}
	case actionRemoveBlock:
		it.Content = content.Remove(it.Content, blockID)
	case actionMoveUp:
		it.Content = content.Move(it.Content, blockID, content.Up)
	case actionMoveDown:
		it.Content = content.Move(it.Content, blockID, content.Down)
	case actionSaveDraft, actionPublish:
		if st.Error != "" {
			break
		}
		publish := action == actionPublish
		saved, err := a.Library.Save(c.Request().Context(), coll, it, publish)
		switch {
		case errors.Is(err, ErrTitleRequired):
			st.Error = "Title is required."
			code = http.StatusUnprocessableEntity
		case err != nil:
			st.Item = it
			st.Error = "Failed to save. Please try again."
			return a.renderEditor(c, http.StatusInternalServerError, st)
		default:
			msg := "Saved as draft"
			if publish {
				msg = "Published"
			}
			return redirectOrJSON(c, dashboardURL(coll, msg+": "+saved.Title), saved)
		}
	}

	st.Item = it
	return a.renderEditor(c, code, st)
}

func (a *App) renderEditor(c echo.Context, code int, st views.EditorState) error {
	title := "New " + st.Collection.Singular()
	if !st.Item.IsNew() {
		title = "Edit " + st.Item.Title
	}
	return RenderStatus(c, code, a.Views.AdminEditor(a.page(c, title), st))
}
