// Package ratelimit throttles requests per key, such as one org/user pair
// starting OAuth flows.
//
// Two backends implement Limiter:
//
//   - NewLocalLimiter keeps a golang.org/x/time/rate token bucket per key in
//     process memory.
//   - NewDistributedLimiter counts requests in a Redis sliding window so the
//     budget is shared by every instance.
//
// HTTPMiddleware applies a limiter to a handler and answers 429 with a
// Retry-After header once a key's budget is spent:
//
//	limiter, _ := ratelimit.NewLocalLimiter(ratelimit.Config{
//		Enabled: true,
//		Limit:   20,
//		Window:  time.Minute,
//	})
//	router.Handle("/authorize", ratelimit.HTTPMiddleware(limiter, ratelimit.IdentityKey, logger)(handler))
package ratelimit
