package tastebase

import (
	"context"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// CuisineService reads the set-based inverted indexes maintained by
// RestaurantService.Create. Cuisines are append-only: no removal path exists.
type CuisineService struct {
	rdb    *redis.Client
	logger Logger
}

func NewCuisineService(rdb *redis.Client, logger Logger) *CuisineService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &CuisineService{rdb: rdb, logger: logger}
}

// List returns all known cuisine names. Set membership order is not
// guaranteed.
func (s *CuisineService) List(ctx context.Context) ([]string, error) {
	cuisines, err := s.rdb.SMembers(ctx, CuisinesKey).Result()
	if err != nil {
		return nil, &StoreError{Op: "list cuisines", Err: err}
	}
	return cuisines, nil
}

// RestaurantNames resolves a cuisine to the names of its linked restaurants:
// the cuisine's id set followed by a per-id name lookup fan-out. Ids whose
// record has vanished are skipped.
func (s *CuisineService) RestaurantNames(ctx context.Context, cuisine string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, CuisineKey(cuisine)).Result()
	if err != nil {
		return nil, &StoreError{Op: "list cuisine restaurants", Err: err}
	}

	found := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			name, err := s.rdb.HGet(gctx, RestaurantKey(id), "name").Result()
			if err == redis.Nil {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &StoreError{Op: "list cuisine restaurants", Err: err}
	}

	names := make([]string, 0, len(found))
	for _, name := range found {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
