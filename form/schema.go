package form

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/utils"
)

// Field names as they appear in the draft and in error maps.
const (
	FieldTitle  = "title"
	FieldBody   = "body"
	FieldUserID = "userId"
)

const (
	msgTitleRequired = "Post title is required"
	msgBodyRequired  = "Post body is required"
	msgUserRequired  = "Please select an author for this post"
	msgUserInvalid   = "Please select a valid author"
)

const draftSchema = `{
  "type": "object",
  "properties": {
    "title":  {"type": "string", "minLength": 1},
    "body":   {"type": "string", "minLength": 1},
    "userId": {"type": "string", "minLength": 1, "pattern": "^[0-9]+$"}
  },
  "required": ["title", "body", "userId"]
}`

var schema = jsonschema.MustCompileString("draft.schema.json", draftSchema)

// ValidationError lists one message per invalid draft field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "form: invalid fields: " + strings.Join(names, ", ")
}

// Normalize trims surrounding whitespace from every field. The text is
// otherwise sent as entered; templates escape it on output.
func Normalize(d models.Draft) models.Draft {
	return models.Draft{
		Title:  strings.TrimSpace(d.Title),
		Body:   strings.TrimSpace(d.Body),
		UserID: strings.TrimSpace(d.UserID),
	}
}

// Validate checks every field of d at once and returns the payload to submit.
// When users is non-empty the selected author must be one of them.
// The returned error is a *ValidationError or nil.
func Validate(d models.Draft, users []models.User) (models.NewPost, error) {
	d = Normalize(d)
	fields := map[string]string{}

	// markup with no visible text counts as empty
	instance := map[string]interface{}{
		FieldTitle:  utils.VisibleText(d.Title),
		FieldBody:   utils.VisibleText(d.Body),
		FieldUserID: d.UserID,
	}
	if err := schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return models.NewPost{}, err
		}
		for _, name := range invalidFields(ve) {
			fields[name] = messageFor(name, d)
		}
	}

	var userID int
	if _, bad := fields[FieldUserID]; !bad {
		id, err := strconv.Atoi(d.UserID)
		switch {
		case err != nil:
			fields[FieldUserID] = msgUserInvalid
		case len(users) > 0:
			if _, ok := models.FindUser(users, id); !ok {
				fields[FieldUserID] = msgUserInvalid
			}
		}
		userID = id
	}

	if len(fields) > 0 {
		return models.NewPost{}, &ValidationError{Fields: fields}
	}
	return models.NewPost{Title: d.Title, Body: d.Body, UserID: userID}, nil
}

// invalidFields walks the schema error tree and returns the top-level
// properties it points at.
func invalidFields(ve *jsonschema.ValidationError) []string {
	seen := map[string]bool{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		loc := strings.TrimLeft(e.InstanceLocation, "#/")
		if loc != "" {
			if i := strings.IndexByte(loc, '/'); i >= 0 {
				loc = loc[:i]
			}
			seen[loc] = true
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	out := make([]string, 0, len(seen))
	for name := range seen {
		switch name {
		case FieldTitle, FieldBody, FieldUserID:
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func messageFor(field string, d models.Draft) string {
	switch field {
	case FieldTitle:
		return msgTitleRequired
	case FieldBody:
		return msgBodyRequired
	default:
		if d.UserID == "" {
			return msgUserRequired
		}
		return msgUserInvalid
	}
}
