package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches all API routes to the router. Watchlist and
// profile routes sit behind the bearer-token middleware; discovery
// routes are public.
func RegisterRoutes(r *mux.Router, users *UsersHandler, watchlist *WatchlistHandler, movies *MoviesHandler, verifier tokenVerifier) {
	api := r.PathPrefix("/api").Subrouter()
	requireAuth := RequireAuth(verifier)

	api.HandleFunc("/users/register", users.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/users/login", users.Login).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/users/verify", requireAuth(http.HandlerFunc(users.Profile))).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/users/profile", requireAuth(http.HandlerFunc(users.Profile))).Methods(http.MethodGet, http.MethodOptions)

	wl := api.PathPrefix("/watchlist").Subrouter()
	wl.Use(requireAuth)
	wl.HandleFunc("", watchlist.List).Methods(http.MethodGet, http.MethodOptions)
	wl.HandleFunc("", watchlist.Add).Methods(http.MethodPost, http.MethodOptions)
	wl.HandleFunc("/check/{mediaId}", watchlist.Check).Methods(http.MethodGet, http.MethodOptions)
	wl.HandleFunc("/{mediaId}", watchlist.Remove).Methods(http.MethodDelete, http.MethodOptions)

	mv := api.PathPrefix("/movies").Subrouter()
	mv.HandleFunc("/search", movies.Search).Methods(http.MethodGet)
	mv.HandleFunc("/trending/{type}", movies.Trending).Methods(http.MethodGet)
	mv.HandleFunc("/details/{type}/{id:[0-9]+}", movies.Details).Methods(http.MethodGet)
	mv.HandleFunc("/popular/movies", movies.PopularMovies).Methods(http.MethodGet)
	mv.HandleFunc("/tv/popular", movies.PopularTV).Methods(http.MethodGet)
	mv.HandleFunc("/tv/{id:[0-9]+}", movies.TVDetails).Methods(http.MethodGet)
}
