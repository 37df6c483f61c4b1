// Package ratelimit spaces outgoing requests so the scraper stays polite.
//
// The target site is fetched strictly one request at a time; Delay makes sure
// consecutive requests are at least the configured interval apart.
//
//	limiter := ratelimit.NewDelay(2 * time.Second)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
