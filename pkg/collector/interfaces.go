package collector

import (
	"context"

	"igfollowers/pkg/instagram"
	"igfollowers/pkg/request"
)

// FollowerClient defines the interface for fetching follower pages
type FollowerClient interface {
	FetchFollowers(ctx context.Context, tmpl request.Template, cursor string) (*instagram.FollowersPage, error)
}

// Progress receives one call per collected page
type Progress interface {
	Page(page, added, total, target int)
}
