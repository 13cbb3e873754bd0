package app

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request and response bodies of the HTTP API. Error payloads always carry
// success=false plus the request ID for correlation; success payloads embed
// success=true.

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type MovieResponse struct {
	Id               int64    `json:"id"`
	Title            string   `json:"title"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"posterPath"`
	BackdropPath     string   `json:"backdropPath"`
	Genres           []string `json:"genres"`
	ReleaseDate      string   `json:"releaseDate"`
	Runtime          int      `json:"runtime"`
	Rating           float64  `json:"rating"`
	Tagline          string   `json:"tagline,omitempty"`
	OriginalLanguage string   `json:"originalLanguage,omitempty"`
}

// NowShowingResponse lists the movies that have at least one upcoming show.
type NowShowingResponse struct {
	Success bool            `json:"success"`
	Movies  []MovieResponse `json:"movies"`
}

type ShowTimeResponse struct {
	ShowId int64           `json:"showId"`
	Time   time.Time       `json:"time"`
	Price  decimal.Decimal `json:"price"`
}

// MovieShowsResponse is a movie plus its upcoming show times grouped by date
// (keys are "2006-01-02").
type MovieShowsResponse struct {
	Success  bool                          `json:"success"`
	Movie    MovieResponse                 `json:"movie"`
	DateTime map[string][]ShowTimeResponse `json:"dateTime"`
}

type SeatMapResponse struct {
	Success       bool     `json:"success"`
	OccupiedSeats []string `json:"occupiedSeats"`
}

type SeatAvailabilityResponse struct {
	Success   bool `json:"success"`
	Available bool `json:"available"`
}

type ReserveSeatsRequest struct {
	ShowId int64    `json:"showId" validate:"required,gt=0"`
	Seats  []string `json:"seats" validate:"required,min=1,max=10,unique,dive,seat"`
}

type BookingResponse struct {
	Id        int64           `json:"id"`
	ShowId    int64           `json:"showId"`
	Seats     []string        `json:"seats"`
	Amount    decimal.Decimal `json:"amount"`
	IsPaid    bool            `json:"isPaid"`
	ExpiresAt time.Time       `json:"expiresAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ReserveSeatsResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Booking BookingResponse `json:"booking"`
}

type ShowSummary struct {
	Id        int64           `json:"id"`
	StartTime time.Time       `json:"startTime"`
	Price     decimal.Decimal `json:"price"`
}

type MovieSummary struct {
	Id         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"posterPath"`
	Runtime    int    `json:"runtime"`
}

type BookingDetailResponse struct {
	Id               int64           `json:"id"`
	Seats            []string        `json:"seats"`
	Amount           decimal.Decimal `json:"amount"`
	IsPaid           bool            `json:"isPaid"`
	CreatedAt        time.Time       `json:"createdAt"`
	Show             ShowSummary     `json:"show"`
	Movie            MovieSummary    `json:"movie"`
	ExpiresAt        *time.Time      `json:"expiresAt,omitempty"`
	SecondsRemaining *int64          `json:"secondsRemaining,omitempty"`
}

type UserBookingsResponse struct {
	Success  bool                    `json:"success"`
	Bookings []BookingDetailResponse `json:"bookings"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	BookingId int64 `json:"bookingId" validate:"required,gt=0"`
}

type CreateOrderResponse struct {
	Success  bool            `json:"success"`
	OrderId  string          `json:"orderId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	KeyId    string          `json:"keyId"`
}

type VerifyPaymentRequest struct {
	BookingId int64  `json:"bookingId" validate:"required,gt=0"`
	OrderId   string `json:"orderId" validate:"required"`
	PaymentId string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type ShowInput struct {
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Times []string `json:"times" validate:"required,min=1,dive,datetime=15:04"`
}

type AddShowRequest struct {
	MovieId    int64           `json:"movieId" validate:"required,gt=0"`
	ShowsInput []ShowInput     `json:"showsInput" validate:"required,min=1,dive"`
	ShowPrice  decimal.Decimal `json:"showPrice" validate:"required"`
}

type DashboardResponse struct {
	Success   bool      `json:"success"`
	Dashboard Dashboard `json:"dashboard"`
}

type Dashboard struct {
	TotalBookings  int             `json:"totalBookings"`
	PaidBookings   int             `json:"paidBookings"`
	UnpaidBookings int             `json:"unpaidBookings"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalUsers     int             `json:"totalUsers"`
	ActiveShows    int             `json:"activeShows"`
}

type ShowResponse struct {
	Id        int64           `json:"id"`
	MovieId   int64           `json:"movieId"`
	StartTime time.Time       `json:"startTime"`
	Price     decimal.Decimal `json:"price"`
	Movie     *MovieResponse  `json:"movie,omitempty"`
}

type AdminShowsResponse struct {
	Success bool           `json:"success"`
	Shows   []ShowResponse `json:"shows"`
}

type AdminBookingResponse struct {
	BookingDetailResponse
	User UserSummary `json:"user"`
}

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MetadataResponse struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	TotalRecords int `json:"totalRecords"`
}

type AdminBookingsResponse struct {
	Success  bool                   `json:"success"`
	Bookings []AdminBookingResponse `json:"bookings"`
	Metadata MetadataResponse       `json:"metadata"`
}

type IdentityWebhookRequest struct {
	Type string `json:"type" validate:"required"`
	Data struct {
		Id       string `json:"id" validate:"required"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		ImageUrl string `json:"imageUrl"`
	} `json:"data"`
}
