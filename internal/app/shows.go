package app

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
)

// GetNowShowingHandler lists the movies that have at least one upcoming show,
// ordered by their earliest show time.
func (app *Application) GetNowShowingHandler(w http.ResponseWriter, r *http.Request) {
	shows, err := app.showRepo.GetUpcoming(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	seen := make(map[int64]bool)
	movies := make([]MovieResponse, 0, len(shows))

	for _, show := range shows {
		if show.Movie == nil || seen[show.Movie.ID] {
			continue
		}

		seen[show.Movie.ID] = true
		movies = append(movies, toMovieResponse(show.Movie))
	}

	resp := NowShowingResponse{
		Success: true,
		Movies:  movies,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetShowsByMovieHandler returns a movie together with its upcoming show
// times grouped by date.
func (app *Application) GetShowsByMovieHandler(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	shows, err := app.showRepo.GetUpcomingByMovie(r.Context(), movieId, time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	dateTime := make(map[string][]ShowTimeResponse)

	for _, show := range shows {
		date := show.StartTime.Format("2006-01-02")
		dateTime[date] = append(dateTime[date], ShowTimeResponse{
			ShowId: show.ID,
			Time:   show.StartTime,
			Price:  show.Price,
		})
	}

	resp := MovieShowsResponse{
		Success:  true,
		Movie:    toMovieResponse(movie),
		DateTime: dateTime,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetOccupiedSeatsHandler returns the labels of a show's occupied seats.
func (app *Application) GetOccupiedSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showId, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seatMap, err := app.showRepo.GetSeatMap(r.Context(), showId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	occupied := make([]string, 0, len(seatMap))
	for seat := range seatMap {
		occupied = append(occupied, seat)
	}
	sort.Strings(occupied)

	resp := SeatMapResponse{
		Success:       true,
		OccupiedSeats: occupied,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CheckSeatAvailabilityHandler reports whether every seat in the query is
// still free for the given show. Read-only; reserving is a separate step and
// may still fail if another booking claims the seats first.
func (app *Application) CheckSeatAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	showId, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	raw := r.URL.Query().Get("seats")
	if raw == "" {
		app.badRequestResponse(w, r, fmt.Errorf("query parameter 'seats' is required"))
		return
	}

	seats := strings.Split(raw, ",")
	for _, seat := range seats {
		if err := app.validator.Var(seat, "seat"); err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid seat label %q", seat))
			return
		}
	}

	available, err := app.showRepo.CheckAvailability(r.Context(), showId, seats)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := SeatAvailabilityResponse{
		Success:   true,
		Available: available,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// AddShowsHandler bulk-creates shows for a movie. If the movie is not in the
// local catalog yet, its details are fetched from the metadata source first.
func (app *Application) AddShowsHandler(w http.ResponseWriter, r *http.Request) {
	var input AddShowRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	if !input.ShowPrice.IsPositive() {
		app.badRequestResponse(w, r, fmt.Errorf("show price must be greater than zero"))
		return
	}

	_, err = app.movieRepo.GetById(r.Context(), input.MovieId)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			app.serverErrorResponse(w, r, err)
			return
		}

		movie, err := app.metadataClient.FetchMovie(r.Context(), input.MovieId)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.notFoundResponseWithMsg(w, r, "Movie not found in the metadata source")
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		err = app.movieRepo.Upsert(r.Context(), movie)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	shows := make([]domain.Show, 0)

	for _, showInput := range input.ShowsInput {
		for _, t := range showInput.Times {
			startTime, err := time.ParseInLocation("2006-01-02 15:04", showInput.Date+" "+t, time.UTC)
			if err != nil {
				app.badRequestResponse(w, r, fmt.Errorf("invalid show time %q on %q", t, showInput.Date))
				return
			}

			shows = append(shows, domain.Show{
				MovieID:   input.MovieId,
				StartTime: startTime,
				Price:     input.ShowPrice,
			})
		}
	}

	err = app.showRepo.CreateBatch(r.Context(), shows)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := MessageResponse{
		Success: true,
		Message: "Shows added successfully",
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieResponse(movie *domain.Movie) MovieResponse {
	releaseDate := ""
	if !movie.ReleaseDate.IsZero() {
		releaseDate = movie.ReleaseDate.Format("2006-01-02")
	}

	return MovieResponse{
		Id:               movie.ID,
		Title:            movie.Title,
		Overview:         movie.Overview,
		PosterPath:       movie.PosterPath,
		BackdropPath:     movie.BackdropPath,
		Genres:           movie.Genres,
		ReleaseDate:      releaseDate,
		Runtime:          movie.Runtime,
		Rating:           movie.Rating,
		Tagline:          movie.Tagline,
		OriginalLanguage: movie.OriginalLanguage,
	}
}
