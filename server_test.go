package tastebase

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	_, rdb := newTestRedis(t)

	logger := &NoOpLogger{}
	metrics := NewInMemoryMetrics()
	restaurants := NewRestaurantServiceWithObservability(rdb, logger, metrics)
	cuisines := NewCuisineService(rdb, logger)
	weather := NewWeatherService(rdb, stubWeatherClient{payload: []byte(`{"temp":70}`)}, logger, metrics)

	srv := NewServer(Config{Port: "0"}, rdb, restaurants, cuisines, weather, logger, metrics)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body interface{}) (int, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func TestEndToEndScenario(t *testing.T) {
	ts := newTestServer(t)

	// Create a restaurant.
	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/restaurants", map[string]interface{}{
		"name":     "Pasta Place",
		"location": "40.7,-74.0",
		"cuisines": []string{"italian"},
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("create restaurant: status %d, envelope %+v", status, env)
	}
	var created Restaurant
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode restaurant: %v", err)
	}
	if created.ID == "" || created.AvgStars != 0 {
		t.Fatalf("unexpected created restaurant: %+v", created)
	}

	// Cuisine indexes reflect the creation.
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/cuisines", nil)
	if status != http.StatusOK {
		t.Fatalf("list cuisines: status %d", status)
	}
	var cuisineNames []string
	_ = json.Unmarshal(env.Data, &cuisineNames)
	if len(cuisineNames) != 1 || cuisineNames[0] != "italian" {
		t.Fatalf("expected [italian], got %v", cuisineNames)
	}

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/cuisines/italian", nil)
	if status != http.StatusOK {
		t.Fatalf("cuisine restaurants: status %d", status)
	}
	var restaurantNames []string
	_ = json.Unmarshal(env.Data, &restaurantNames)
	if len(restaurantNames) != 1 || restaurantNames[0] != "Pasta Place" {
		t.Fatalf("expected [Pasta Place], got %v", restaurantNames)
	}

	// Two reviews: 4 then 5 stars.
	var reviewIDs []string
	for _, rating := range []float64{4, 5} {
		status, env = doRequest(t, ts, http.MethodPost, "/api/v1/restaurants/"+created.ID+"/reviews", map[string]interface{}{
			"rating": rating,
			"review": "tasty",
		})
		if status != http.StatusOK || !env.Success {
			t.Fatalf("create review: status %d, envelope %+v", status, env)
		}
		var review Review
		if err := json.Unmarshal(env.Data, &review); err != nil {
			t.Fatalf("decode review: %v", err)
		}
		reviewIDs = append(reviewIDs, review.ID)
	}

	// The aggregate carries the recomputed average.
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/restaurants/"+created.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("get restaurant: status %d", status)
	}
	var fetched Restaurant
	if err := json.Unmarshal(env.Data, &fetched); err != nil {
		t.Fatalf("decode restaurant: %v", err)
	}
	if fetched.AvgStars != 4.5 {
		t.Errorf("expected avgStars 4.5, got %v", fetched.AvgStars)
	}
	if len(fetched.Cuisines) != 1 || fetched.Cuisines[0] != "italian" {
		t.Errorf("expected cuisines [italian], got %v", fetched.Cuisines)
	}

	// Rating-sorted listing includes the restaurant.
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/restaurants?page=1&limit=10", nil)
	if status != http.StatusOK {
		t.Fatalf("list restaurants: status %d", status)
	}
	var listed []Restaurant
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the created restaurant in the listing, got %+v", listed)
	}

	// Delete the first review; only the second remains.
	status, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/restaurants/"+created.ID+"/reviews/"+reviewIDs[0], nil)
	if status != http.StatusOK {
		t.Fatalf("delete review: status %d", status)
	}

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/restaurants/"+created.ID+"/reviews", nil)
	if status != http.StatusOK {
		t.Fatalf("list reviews: status %d", status)
	}
	var reviews []Review
	if err := json.Unmarshal(env.Data, &reviews); err != nil {
		t.Fatalf("decode reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ID != reviewIDs[1] {
		t.Fatalf("expected only the second review, got %+v", reviews)
	}

	// Re-deleting reports not-found without erroring destructively.
	status, env = doRequest(t, ts, http.MethodDelete, "/api/v1/restaurants/"+created.ID+"/reviews/"+reviewIDs[0], nil)
	if status != http.StatusNotFound || env.Success {
		t.Fatalf("expected 404 on second delete, got %d %+v", status, env)
	}

	// Weather comes from the (stubbed) provider through the cache.
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/restaurants/"+created.ID+"/weather", nil)
	if status != http.StatusOK {
		t.Fatalf("get weather: status %d", status)
	}
	if string(env.Data) != `{"temp":70}` {
		t.Fatalf("unexpected weather payload: %s", env.Data)
	}
}

func TestUnknownRestaurantRejectedByMiddleware(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/restaurants/nope",
		"/api/v1/restaurants/nope/weather",
		"/api/v1/restaurants/nope/reviews",
	} {
		status, env := doRequest(t, ts, http.MethodGet, path, nil)
		if status != http.StatusNotFound || env.Success {
			t.Errorf("%s: expected 404, got %d %+v", path, status, env)
		}
	}
}

func TestCreateRestaurantValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []map[string]interface{}{
		{"location": "1,2", "cuisines": []string{"thai"}},  // missing name
		{"name": "X", "cuisines": []string{"thai"}},        // missing location
		{"name": "X", "location": "1,2"},                   // missing cuisines
		{"name": "X", "location": "1,2", "cuisines": []string{}},
	}
	for i, body := range cases {
		status, env := doRequest(t, ts, http.MethodPost, "/api/v1/restaurants", body)
		if status != http.StatusBadRequest || env.Success {
			t.Errorf("case %d: expected 400, got %d %+v", i, status, env)
		}
	}
}

func TestCreateReviewValidation(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/restaurants", map[string]interface{}{
		"name":     "Pasta Place",
		"location": "40.7,-74.0",
		"cuisines": []string{"italian"},
	})
	if status != http.StatusOK {
		t.Fatalf("create restaurant: status %d %+v", status, env)
	}
	var created Restaurant
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode restaurant: %v", err)
	}

	for _, rating := range []float64{0, 6, -1} {
		status, _ := doRequest(t, ts, http.MethodPost, "/api/v1/restaurants/"+created.ID+"/reviews", map[string]interface{}{
			"rating": rating,
		})
		if status != http.StatusBadRequest {
			t.Errorf("rating %v: expected 400, got %d", rating, status)
		}
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodGet, "/api/v1/restaurants/search", nil)
	if status != http.StatusBadRequest || env.Success {
		t.Fatalf("expected 400 without q, got %d %+v", status, env)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodGet, "/healthz", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected healthy, got %d %+v", status, env)
	}
}
