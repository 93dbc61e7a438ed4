package tastebase

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// EnsureSearchIndex creates the RediSearch index over restaurant hashes if it
// does not exist yet. Safe to call on every startup.
func (s *RestaurantService) EnsureSearchIndex(ctx context.Context) error {
	err := s.rdb.FTCreate(ctx, RestaurantSearchIndex,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{restaurantKeyPrefix},
		},
		&redis.FieldSchema{
			FieldName: "name",
			FieldType: redis.SearchFieldTypeText,
		},
	).Err()
	if err != nil && strings.Contains(err.Error(), "Index already exists") {
		return nil
	}
	if err != nil {
		return s.storeErr("create search index", err)
	}
	s.logger.Info("search index created", "index", RestaurantSearchIndex)
	return nil
}

// SearchByName runs a prefix search on restaurant names via FT.SEARCH.
func (s *RestaurantService) SearchByName(ctx context.Context, query string) ([]*Restaurant, error) {
	q := "@name:" + escapeSearchTerm(query) + "*"

	res, err := s.rdb.FTSearchWithArgs(ctx, RestaurantSearchIndex, q, &redis.FTSearchOptions{}).Result()
	if err != nil {
		return nil, s.storeErr("search restaurants", err)
	}

	out := make([]*Restaurant, 0, len(res.Docs))
	for _, doc := range res.Docs {
		out = append(out, restaurantFromHash(doc.Fields))
	}
	return out, nil
}

// searchSpecialChars are the query-syntax characters escaped before the term
// is handed to FT.SEARCH.
const searchSpecialChars = `<>{}[]"':;!@#$%^&*()-+=~`

func escapeSearchTerm(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if strings.ContainsRune(searchSpecialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
