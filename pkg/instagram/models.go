package instagram

import (
	"fmt"

	"github.com/tidwall/gjson"

	errs "igfollowers/pkg/errors"
)

// FollowersPage is one validated page of the follower list
type FollowersPage struct {
	Usernames  []string
	NextCursor string
	HasMore    bool
}

// Exhausted reports whether no further page can be requested
func (p *FollowersPage) Exhausted() bool {
	return !p.HasMore || p.NextCursor == ""
}

// parseFollowersPage validates a follower response body. Every deviation from
// the expected shape is a schema error; nothing is guessed.
//
//	{"users": [{"username": "..."}], "next_max_id": "...", "has_more": true, "status": "ok"}
func parseFollowersPage(body []byte, statusCode int) (*FollowersPage, error) {
	if !gjson.ValidBytes(body) {
		return nil, errs.New(errs.ErrorTypeParsing, statusCode,
			fmt.Sprintf("response is not JSON (login or challenge page?): %s", preview(body)))
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, schemaError(statusCode, "response is not a JSON object")
	}

	status := doc.Get("status")
	if status.Type != gjson.String {
		return nil, schemaError(statusCode, "missing status field")
	}
	if status.Str != "ok" {
		return nil, schemaError(statusCode, fmt.Sprintf("status is %q (message %q)", status.Str, doc.Get("message").String()))
	}

	users := doc.Get("users")
	if !users.IsArray() {
		return nil, schemaError(statusCode, "users is not an array")
	}

	page := &FollowersPage{}
	var invalid error
	users.ForEach(func(key, user gjson.Result) bool {
		username := user.Get("username")
		if username.Type != gjson.String || username.Str == "" {
			invalid = schemaError(statusCode, fmt.Sprintf("user %d has no username", key.Int()))
			return false
		}
		if !IsValidUsername(username.Str) {
			invalid = schemaError(statusCode, fmt.Sprintf("user %d has an invalid username %q", key.Int(), username.Str))
			return false
		}
		page.Usernames = append(page.Usernames, username.Str)
		return true
	})
	if invalid != nil {
		return nil, invalid
	}

	switch hasMore := doc.Get("has_more"); hasMore.Type {
	case gjson.True, gjson.False:
		page.HasMore = hasMore.Bool()
	case gjson.Null:
		// absent or null ends the listing
	default:
		return nil, schemaError(statusCode, "has_more is not a boolean")
	}

	switch cursor := doc.Get("next_max_id"); cursor.Type {
	case gjson.String:
		page.NextCursor = cursor.Str
	case gjson.Number:
		page.NextCursor = cursor.Raw
	case gjson.Null:
	default:
		return nil, schemaError(statusCode, "next_max_id is not a string")
	}

	if page.HasMore && page.NextCursor == "" {
		return nil, schemaError(statusCode, "has_more is true but next_max_id is missing")
	}

	return page, nil
}

func schemaError(statusCode int, msg string) error {
	return errs.New(errs.ErrorTypeSchema, statusCode, "unexpected follower response: "+msg)
}

// preview returns at most the first 200 bytes of a body for error messages
func preview(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
