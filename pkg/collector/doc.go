// Package collector gathers an account's follower usernames page by page.
//
// A Collector replays a captured request through a FollowerClient, waits on
// a ratelimit.Limiter between pages and keeps an ordered, duplicate-free
// accumulator. It stops when the accumulator holds the target count or the
// endpoint reports no further pages. Errors are never retried: the first
// failure ends the run and nothing partial is returned.
//
//	c := collector.New(client, ratelimit.NewJitter(4*time.Second, 12*time.Second), log)
//	result, err := c.Collect(ctx, tmpl, 500)
package collector
