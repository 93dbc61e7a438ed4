package tastebase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the pagination window used when the caller supplies no
// limit.
const DefaultPageSize = 10

// Restaurant is the aggregate root: the hash record plus its cuisine set.
type Restaurant struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Location   string   `json:"location"` // "lat,long"
	ViewCount  int64    `json:"viewCount"`
	TotalStars float64  `json:"totalStars"`
	AvgStars   float64  `json:"avgStars"`
	Cuisines   []string `json:"cuisines,omitempty"`
}

// RestaurantService orchestrates the multi-key operations behind the
// restaurant aggregate: creation, cuisine links, the rating index, reviews
// (reviews.go), and name search (search.go).
type RestaurantService struct {
	rdb     *redis.Client
	dedup   DedupFilter
	logger  Logger
	metrics Metrics
}

// NewRestaurantService creates a restaurant service with no-op logger and
// metrics.
func NewRestaurantService(rdb *redis.Client) *RestaurantService {
	return &RestaurantService{
		rdb:     rdb,
		logger:  &NoOpLogger{},
		metrics: &NoOpMetrics{},
	}
}

// NewRestaurantServiceWithObservability creates a restaurant service with
// logging and metrics.
func NewRestaurantServiceWithObservability(rdb *redis.Client, logger Logger, metrics Metrics) *RestaurantService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}
	return &RestaurantService{rdb: rdb, logger: logger, metrics: metrics}
}

// SetDedupFilter enables the probabilistic duplicate check on Create. With no
// filter set, Create never rejects.
func (s *RestaurantService) SetDedupFilter(f DedupFilter) {
	s.dedup = f
}

// Create generates a new restaurant aggregate: cuisine links, the core hash
// record, and a rating-index entry with score 0.
//
// All writes are issued concurrently with no cross-key transaction. The first
// error is propagated and the aggregate can be left partially applied; there
// is no rollback.
//
// When a DedupFilter is set, a "probably seen" answer for name:location
// rejects with ErrAlreadyExists before any write. False positives are
// inherent to the filter; false negatives do not occur.
func (s *RestaurantService) Create(ctx context.Context, name, location string, cuisines []string) (*Restaurant, error) {
	start := time.Now()
	defer func() { s.metrics.Timing(MetricCreateDuration, time.Since(start)) }()

	dedupValue := name + ":" + location
	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, dedupValue)
		if err != nil {
			return nil, err
		}
		if seen {
			s.metrics.Increment(MetricRestaurantConflict)
			return nil, WithContext(ErrAlreadyExists, map[string]interface{}{
				"name":     name,
				"location": location,
			})
		}
	}

	id := NewID()
	key := RestaurantKey(id)

	g, gctx := errgroup.WithContext(ctx)
	for _, cuisine := range cuisines {
		cuisine := cuisine
		g.Go(func() error {
			if err := s.rdb.SAdd(gctx, CuisinesKey, cuisine).Err(); err != nil {
				return err
			}
			if err := s.rdb.SAdd(gctx, CuisineKey(cuisine), id).Err(); err != nil {
				return err
			}
			return s.rdb.SAdd(gctx, RestaurantCuisinesKey(id), cuisine).Err()
		})
	}
	g.Go(func() error {
		return s.rdb.HSet(gctx, key, "id", id, "name", name, "location", location).Err()
	})
	g.Go(func() error {
		return s.rdb.ZAdd(gctx, RestaurantsByRatingKey, redis.Z{Score: 0, Member: id}).Err()
	})
	if s.dedup != nil {
		g.Go(func() error {
			return s.dedup.Add(gctx, dedupValue)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.storeErr("create restaurant", err)
	}

	s.metrics.Increment(MetricRestaurantCreated)
	s.logger.Info("restaurant created", "id", id, "name", name, "cuisines", len(cuisines))

	return &Restaurant{ID: id, Name: name, Location: location, Cuisines: cuisines}, nil
}

// GetByID fetches the full record plus its cuisine set, incrementing the view
// counter as one logical read.
//
// The increment is unconditional: a missing id gains a {viewCount: n} stub
// hash, so existence is decided by the presence of the name field rather than
// key existence.
func (s *RestaurantService) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	key := RestaurantKey(id)

	var (
		fields   map[string]string
		cuisines []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.rdb.HIncrBy(gctx, key, "viewCount", 1).Err()
	})
	g.Go(func() error {
		var err error
		fields, err = s.rdb.HGetAll(gctx, key).Result()
		return err
	})
	g.Go(func() error {
		var err error
		cuisines, err = s.rdb.SMembers(gctx, RestaurantCuisinesKey(id)).Result()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storeErr("get restaurant", err)
	}

	if fields["name"] == "" {
		return nil, WithContext(ErrNotFound, map[string]interface{}{"restaurantId": id})
	}

	s.metrics.Increment(MetricRestaurantViews)
	r := restaurantFromHash(fields)
	r.Cuisines = cuisines
	return r, nil
}

// ListByRating returns one page of restaurants ordered by descending average
// rating, ties broken by the sorted set's native ordering. Offset-based and
// stateless: no cursor is retained between calls.
func (s *RestaurantService) ListByRating(ctx context.Context, page, pageSize int) ([]*Restaurant, error) {
	start, end := pageWindow(page, pageSize)

	ids, err := s.rdb.ZRevRange(ctx, RestaurantsByRatingKey, start, end).Result()
	if err != nil {
		return nil, s.storeErr("list restaurants", err)
	}

	out := make([]*Restaurant, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			fields, err := s.rdb.HGetAll(gctx, RestaurantKey(id)).Result()
			if err != nil {
				return err
			}
			out[i] = restaurantFromHash(fields)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.storeErr("list restaurants", err)
	}
	return out, nil
}

// Exists reports whether a restaurant hash exists. Used by the HTTP
// existence pre-check; note a view-counter stub (see GetByID) also counts as
// existing here.
func (s *RestaurantService) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, RestaurantKey(id)).Result()
	if err != nil {
		return false, s.storeErr("restaurant exists", err)
	}
	return n > 0, nil
}

// SetDetails stores a free-form details document (contact info, links) as a
// RedisJSON document, replacing any previous one.
func (s *RestaurantService) SetDetails(ctx context.Context, id string, details json.RawMessage) error {
	if err := s.rdb.JSONSet(ctx, RestaurantDetailsKey(id), "$", string(details)).Err(); err != nil {
		return s.storeErr("set restaurant details", err)
	}
	return nil
}

// Details fetches the restaurant's details document.
func (s *RestaurantService) Details(ctx context.Context, id string) (json.RawMessage, error) {
	res, err := s.rdb.JSONGet(ctx, RestaurantDetailsKey(id)).Result()
	if err == redis.Nil || (err == nil && res == "") {
		return nil, WithContext(ErrNotFound, map[string]interface{}{"restaurantId": id})
	}
	if err != nil {
		return nil, s.storeErr("get restaurant details", err)
	}
	return json.RawMessage(res), nil
}

func (s *RestaurantService) storeErr(op string, err error) error {
	s.metrics.Increment(MetricStoreErrors)
	s.logger.Error("store operation failed", "op", op, "error", err)
	return &StoreError{Op: op, Err: err}
}

// pageWindow converts 1-indexed page/size to a zero-based inclusive range.
func pageWindow(page, pageSize int) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	start := int64(page-1) * int64(pageSize)
	return start, start + int64(pageSize) - 1
}

// restaurantFromHash maps a restaurant hash to its struct form. Numeric
// fields are written only by this service; unparseable values read as zero.
func restaurantFromHash(fields map[string]string) *Restaurant {
	r := &Restaurant{
		ID:       fields["id"],
		Name:     fields["name"],
		Location: fields["location"],
	}
	r.ViewCount, _ = strconv.ParseInt(fields["viewCount"], 10, 64)
	r.TotalStars, _ = strconv.ParseFloat(fields["totalStars"], 64)
	r.AvgStars, _ = strconv.ParseFloat(fields["avgStars"], 64)
	return r
}
