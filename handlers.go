package tastebase

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// createRestaurantRequest is the validated shape for POST /restaurants.
type createRestaurantRequest struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Cuisines []string `json:"cuisines"`
}

func (r createRestaurantRequest) validate() error {
	if r.Name == "" {
		return WithContext(ErrValidation, map[string]interface{}{"field": "name"})
	}
	if r.Location == "" {
		return WithContext(ErrValidation, map[string]interface{}{"field": "location"})
	}
	if len(r.Cuisines) == 0 {
		return WithContext(ErrValidation, map[string]interface{}{"field": "cuisines"})
	}
	return nil
}

// createReviewRequest is the validated shape for POST .../reviews.
type createReviewRequest struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

func (r createReviewRequest) validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return WithContext(ErrValidation, map[string]interface{}{"field": "rating"})
	}
	return nil
}

func (s *Server) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req createRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.respondErr(w, err)
		return
	}

	restaurant, err := s.restaurants.Create(r.Context(), req.Name, req.Location, req.Cuisines)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, restaurant, "New restaurant added.")
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := s.restaurants.GetByID(r.Context(), chi.URLParam(r, "restaurantId"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, restaurant, "")
}

func (s *Server) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	restaurants, err := s.restaurants.ListByRating(r.Context(), page, limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, restaurants, "")
}

func (s *Server) handleSearchRestaurants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	restaurants, err := s.restaurants.SearchByName(r.Context(), query)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, restaurants, "")
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.respondErr(w, err)
		return
	}

	review, err := s.restaurants.AddReview(r.Context(), chi.URLParam(r, "restaurantId"), req.Rating, req.Review)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, review, "Review added successfully.")
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	reviews, err := s.restaurants.ListReviews(r.Context(), chi.URLParam(r, "restaurantId"), page, limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, reviews, "")
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewId")
	err := s.restaurants.DeleteReview(r.Context(), chi.URLParam(r, "restaurantId"), reviewID)
	if err != nil {
		if IsNotFound(err) {
			respondError(w, http.StatusNotFound, "Review not found")
			return
		}
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, reviewID, "Review deleted successfully")
}

func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	payload, err := s.weather.ForRestaurant(r.Context(), chi.URLParam(r, "restaurantId"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, json.RawMessage(payload), "")
}

func (s *Server) handleSetDetails(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 || !json.Valid(body) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.restaurants.SetDetails(r.Context(), chi.URLParam(r, "restaurantId"), body); err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, struct{}{}, "Restaurant details added successfully")
}

func (s *Server) handleGetDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.restaurants.Details(r.Context(), chi.URLParam(r, "restaurantId"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, details, "")
}

func (s *Server) handleListCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := s.cuisines.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, cuisines, "")
}

func (s *Server) handleCuisineRestaurants(w http.ResponseWriter, r *http.Request) {
	names, err := s.cuisines.RestaurantNames(r.Context(), chi.URLParam(r, "cuisine"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondSuccess(w, names, "")
}

// pageParams reads 1-indexed page and limit query parameters with defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}
