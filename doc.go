// Package tastebase implements a Redis-backed restaurant directory: CRUD over
// restaurant records, cuisine indexes, reviews with a running average rating,
// cached weather lookups, and full-text name search.
//
// Every hard operation is delegated to a Redis data structure:
//
//   - Restaurant records are hashes (core fields plus viewCount/totalStars
//     counters maintained with HINCRBY/HINCRBYFLOAT)
//   - Cuisine membership is a pair of inverted Set indexes plus a global
//     cuisine Set
//   - The rating index is a single sorted set scored by average stars,
//     queried with descending ranges for pagination
//   - Review ids live in a most-recent-first list, review bodies in
//     per-review hashes
//   - Weather payloads are plain strings with a one-hour TTL
//   - Duplicate-restaurant detection uses a Bloom filter over
//     "name:location" strings (probably-seen, never falsely unseen)
//   - Free-form restaurant details are RedisJSON documents, name search is a
//     RediSearch index over the restaurant hash prefix
//
// The service layer is a thin mapping from operations to store commands.
// Within one operation, independent commands are dispatched concurrently and
// awaited jointly; Redis per-command atomicity is the only consistency
// guarantee. There are no transactions and no rollback for multi-key writes.
//
// A single shared client (see SharedClient) is reused by all request
// handlers. The HTTP surface lives in Server; cmd/tastebase wires everything
// together.
package tastebase
