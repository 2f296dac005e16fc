// Package ratelimit paces follower page requests.
//
// The collector waits on a Limiter before every request except the first.
// Jitter sleeps a random duration between two bounds, the way a person
// scrolling the follower dialog would; Unlimited does not wait at all and
// is meant for tests.
//
//	limiter := ratelimit.NewJitter(4*time.Second, 12*time.Second)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // interrupted
//	}
package ratelimit
