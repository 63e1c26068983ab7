// Package pagination fetches the two tiers of the book API: list pages that
// yield ids, and detail records fetched in chunks.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	ids, err := pagination.NewCollector(apiClient, cfg).CollectIDs(ctx)
//	details, err := pagination.NewBatcher(apiClient, cfg, nil).FetchDetails(ctx, ids.IDs)
//
// The collector:
//   - Fetches every list page concurrently in one "list" session
//   - Flattens ids in page order, then in-page order
//   - Skips pages that failed to fetch
//
// The batcher:
//   - Splits ids into contiguous chunks of ChunkSize
//   - Opens a fresh "detail" session per chunk and closes it when the chunk is done
//   - Runs ChunkParallelism chunks at a time (default 1, i.e. sequential)
//   - Returns one result per id in input order; failed fetches are nil
//
// Both share the client's global concurrency limiter, so the number of
// requests in flight never exceeds the client's MaxConcurrency.
package pagination
