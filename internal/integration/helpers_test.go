package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"expiresAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func jsonBody(t testing.TB, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

func bearerToken(t testing.TB, userId string, admin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userId,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if admin {
		claims["role"] = "admin"
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)

	return "Bearer " + token
}

func authHeaders(t testing.TB, userId string, admin bool) map[string]string {
	return map[string]string{"Authorization": bearerToken(t, userId, admin)}
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func seedUser(t testing.TB, app *TestApp, id, email, name string) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `
		INSERT INTO users (id, email, name, image_url)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (id) DO NOTHING
	`, id, email, name)
	require.NoError(t, err)
}

func seedMovie(t testing.TB, app *TestApp, id int64, title string) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `
		INSERT INTO movies (id, title, overview, poster_path, backdrop_path, genres,
			release_date, runtime, rating, tagline, original_language)
		VALUES ($1, $2, '', '', '', '{}', '2020-01-01', 120, 8.0, '', 'en')
		ON CONFLICT (id) DO NOTHING
	`, id, title)
	require.NoError(t, err)
}

func seedShow(t testing.TB, app *TestApp, movieId int64, startTime time.Time, price string) int64 {
	t.Helper()

	var showId int64

	err := app.DB.QueryRow(context.Background(), `
		INSERT INTO shows (movie_id, start_time, price)
		VALUES ($1, $2, $3::numeric)
		RETURNING id
	`, movieId, startTime, price).Scan(&showId)
	require.NoError(t, err)

	return showId
}

// backdateBooking rewinds a booking's creation time so its unpaid window has
// already passed.
func backdateBooking(t testing.TB, app *TestApp, bookingId int64, age time.Duration) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `
		UPDATE bookings SET created_at = now() - make_interval(secs => $2) WHERE id = $1
	`, bookingId, age.Seconds())
	require.NoError(t, err)
}

// pinBookingCreatedAt fixes a booking's creation time to an exact instant so
// tests can hit the expiry window boundary deterministically.
func pinBookingCreatedAt(t testing.TB, app *TestApp, bookingId int64, createdAt time.Time) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `
		UPDATE bookings SET created_at = $2 WHERE id = $1
	`, bookingId, createdAt)
	require.NoError(t, err)
}

func occupiedSeats(t testing.TB, app *TestApp, showId int64) map[string]string {
	t.Helper()

	var seats map[string]string

	err := app.DB.QueryRow(context.Background(), `
		SELECT occupied_seats FROM shows WHERE id = $1
	`, showId).Scan(&seats)
	require.NoError(t, err)

	return seats
}

func bookingCount(t testing.TB, app *TestApp, userId string) int {
	t.Helper()

	var count int

	err := app.DB.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM bookings WHERE user_id = $1
	`, userId).Scan(&count)
	require.NoError(t, err)

	return count
}
