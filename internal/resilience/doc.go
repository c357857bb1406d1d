// Package resilience groups the fault tolerance used on the outbound calls
// of the ingestion pipeline: feed fetches, remote image downloads, article
// enrichment, search index writes and database access.
//
// Subpackages:
//   - circuitbreaker: one sony/gobreaker breaker per remote dependency
//   - retry: capped exponential backoff with jitter
//
// A remote call usually nests the breaker inside the retry, so a rejected
// call is not retried:
//
//	err := retry.Do(ctx, retry.AssetPolicy(), func() error {
//	    res, err := circuitbreaker.Call(breaker, func() (*fetcher.Response, error) {
//	        return fetcher.Get(ctx, client, url, timeout, maxBytes)
//	    })
//	    ...
//	})
package resilience
