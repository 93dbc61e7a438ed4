package tastebase

// Key-space naming: deterministic mapping from logical entity + id to the
// Redis keys that hold it. Pure functions, no state.

const (
	restaurantKeyPrefix = "restaurants:"

	// CuisinesKey is the global set of all known cuisine names.
	CuisinesKey = "cuisines"

	// RestaurantsByRatingKey is the sorted set mapping restaurant id to its
	// average star rating.
	RestaurantsByRatingKey = "restaurants_by_rating"

	// RestaurantBloomKey is the Bloom filter of "name:location" strings used
	// for duplicate detection at creation time.
	RestaurantBloomKey = "bloom:restaurants"

	// RestaurantSearchIndex is the RediSearch index over restaurant hashes.
	RestaurantSearchIndex = "idx:restaurants"
)

// RestaurantKey returns the hash key holding a restaurant's core fields and
// counters.
func RestaurantKey(id string) string {
	return restaurantKeyPrefix + id
}

// CuisineKey returns the set key holding the ids of all restaurants linked to
// a cuisine.
func CuisineKey(name string) string {
	return "cuisine:" + name
}

// RestaurantCuisinesKey returns the set key holding a restaurant's own
// cuisine names, the inverse of CuisineKey denormalized for fast lookup.
func RestaurantCuisinesKey(id string) string {
	return "restaurant_cuisines:" + id
}

// ReviewsKey returns the list key holding a restaurant's review ids,
// most-recent-first.
func ReviewsKey(restaurantID string) string {
	return "reviews:" + restaurantID
}

// ReviewDetailsKey returns the hash key holding a single review's body.
func ReviewDetailsKey(reviewID string) string {
	return "review_details:" + reviewID
}

// WeatherKey returns the string key caching a restaurant's last weather
// payload.
func WeatherKey(restaurantID string) string {
	return "weather:" + restaurantID
}

// RestaurantDetailsKey returns the RedisJSON key holding a restaurant's
// free-form details document.
func RestaurantDetailsKey(id string) string {
	return "restaurant_details:" + id
}
