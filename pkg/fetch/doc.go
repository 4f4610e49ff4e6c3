// Package fetch reads claim-graph payloads from the LinkedTrust API.
//
// # Source
//
// The engine depends only on [Source], which returns raw JSON bytes for the
// four graph endpoints. Decoding is left to the normalize package because
// the endpoints disagree on payload shape.
//
// # Client
//
// [Client] implements [Source] over HTTP:
//
//   - per-request timeout and exponential backoff on network errors and
//     5xx responses (see [Retry])
//   - 404 maps to [ErrNotFound], 429 to an errors.RateLimitedError carrying
//     Retry-After, other 4xx to [ErrBadRequest]; none of these are retried
//   - client-side rate limiting with golang.org/x/time/rate
//   - an optional static bearer token
//   - an optional read-through cache for initial graph payloads;
//     neighbour pages always go to the network
//
// # Usage
//
//	c := fetch.NewClient("https://live.linkedtrust.us",
//	    fetch.WithToken(token),
//	    fetch.WithCache(cache.NewNullCache(), time.Hour),
//	)
//	data, err := c.Neighbors(ctx, "42", 1, 5)
package fetch
