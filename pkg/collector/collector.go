package collector

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/ratelimit"
	"igfollowers/pkg/request"
)

// sampleSize is how many new usernames each page log line shows
const sampleSize = 3

// Result is the outcome of one successful collection run
type Result struct {
	RunID     string
	Usernames []string
	Pages     int
	Exhausted bool
	Target    int
}

// Collector pages through a follower list until the target is reached
// or the list runs out
type Collector struct {
	client   FollowerClient
	limiter  ratelimit.Limiter
	logger   logger.Logger
	progress Progress
}

// New creates a collector. A nil limiter means no delay between pages.
func New(client FollowerClient, limiter ratelimit.Limiter, log logger.Logger) *Collector {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{
		client:  client,
		limiter: limiter,
		logger:  log,
	}
}

// SetProgress sets the page progress display
func (c *Collector) SetProgress(p Progress) {
	c.progress = p
}

// Collect gathers at most target unique usernames in the order they are first
// seen. Any error aborts the run and no partial result is returned.
func (c *Collector) Collect(ctx context.Context, tmpl request.Template, target int) (*Result, error) {
	runID := xid.New().String()
	log := c.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"target_id": tmpl.TargetID(),
	})

	result := &Result{RunID: runID, Target: target}
	if target <= 0 {
		log.WithField("target", target).Info("Target is not positive, nothing to collect")
		result.Usernames = []string{}
		return result, nil
	}

	log.InfoWithFields("Starting follower collection", map[string]interface{}{
		"target": target,
		"action": "collect_start",
	})

	seen := make(map[string]struct{}, target)
	usernames := make([]string, 0, target)
	cursor := ""

	for {
		if result.Pages > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				log.WithError(err).Warn("Collection interrupted")
				return nil, err
			}
		}

		page, err := c.client.FetchFollowers(ctx, tmpl, cursor)
		if err != nil {
			if ctx.Err() != nil {
				log.WithError(err).Warn("Collection interrupted")
				return nil, ctx.Err()
			}
			log.WithError(err).WithFields(map[string]interface{}{
				"page":   result.Pages + 1,
				"cursor": cursor,
			}).Error("Error fetching follower page")
			return nil, fmt.Errorf("fetching page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		var added []string
		for _, name := range page.Usernames {
			if len(usernames) >= target {
				break
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			usernames = append(usernames, name)
			added = append(added, name)
		}

		logger.LogPageProgress(log, result.Pages, len(added), len(usernames), target, sample(added))
		if c.progress != nil {
			c.progress.Page(result.Pages, len(added), len(usernames), target)
		}

		if len(usernames) >= target {
			log.Info("Target reached")
			break
		}
		if page.Exhausted() {
			result.Exhausted = true
			log.WithField("total", len(usernames)).Info("Follower list exhausted before target")
			break
		}
		if page.NextCursor == cursor {
			err := errs.New(errs.ErrorTypeSchema, 0,
				fmt.Sprintf("endpoint returned the same cursor %q twice", cursor))
			log.WithError(err).Error("Pagination is not advancing")
			return nil, err
		}
		cursor = page.NextCursor
	}

	result.Usernames = usernames
	log.InfoWithFields("Follower collection completed", map[string]interface{}{
		"total":     len(usernames),
		"pages":     result.Pages,
		"exhausted": result.Exhausted,
		"action":    "collect_complete",
	})
	return result, nil
}

func sample(names []string) []string {
	if len(names) > sampleSize {
		return names[:sampleSize]
	}
	return names
}
