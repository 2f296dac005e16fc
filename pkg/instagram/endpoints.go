package instagram

import (
	"net/url"
	"strconv"

	"igfollowers/pkg/config"
)

const (
	// DefaultPageSize is the count sent with every follower page request
	DefaultPageSize = 25

	// MaxPageSize is the largest count the web client asks for; larger
	// configured values are rejected by config.Validate
	MaxPageSize = config.MaxPageSize

	// DefaultSearchSurface is the surface the web follower dialog reports
	DefaultSearchSurface = "follow_list_page"

	// MaxUsernameLength is Instagram's limit on username length
	MaxUsernameLength = 30
)

// FollowersQuery builds the pagination query for a follower page.
// The first page is requested with an empty max_id, like the web client does.
func FollowersQuery(cursor string, count int, surface string) url.Values {
	if count <= 0 {
		count = DefaultPageSize
	} else if count > MaxPageSize {
		count = MaxPageSize
	}
	if surface == "" {
		surface = DefaultSearchSurface
	}

	params := url.Values{}
	params.Set("count", strconv.Itoa(count))
	params.Set("max_id", cursor)
	params.Set("search_surface", surface)
	return params
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > MaxUsernameLength {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}
