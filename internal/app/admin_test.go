package app

import (
	"net/http"
	"testing"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/oneshowhq/oneshow/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AdminTestSuite struct {
	suite.Suite
	app         *Application
	bookingRepo *mocks.MockBookingRepo
	showRepo    *mocks.MockShowRepo
	userRepo    *mocks.MockUserRepo
}

func (s *AdminTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.showRepo = new(mocks.MockShowRepo)
	s.userRepo = new(mocks.MockUserRepo)

	s.app = newTestApplication(func(a *Application) {
		a.bookingRepo = s.bookingRepo
		a.showRepo = s.showRepo
		a.userRepo = s.userRepo
	})
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminTestSuite))
}

func (s *AdminTestSuite) TestAdminRoutesRequireAdmin() {
	for _, url := range []string{"/admin/dashboard", "/admin/all-shows", "/admin/all-bookings"} {
		w := executeRequest(s.T(), s.app, http.MethodGet, url, nil, "")
		s.Equal(http.StatusUnauthorized, w.Code, url)

		w = executeRequest(s.T(), s.app, http.MethodGet, url, nil, testUserToken)
		s.Equal(http.StatusForbidden, w.Code, url)
	}
}

func (s *AdminTestSuite) TestGetDashboardHandler() {
	s.bookingRepo.On("Stats", mock.Anything).
		Return(&domain.BookingStats{
			TotalBookings:  12,
			PaidBookings:   9,
			UnpaidBookings: 3,
			TotalRevenue:   decimal.RequireFromString("270.00"),
		}, nil).
		Once()
	s.userRepo.On("Count", mock.Anything).
		Return(40, nil).
		Once()
	s.showRepo.On("GetUpcoming", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]domain.Show{{ID: 1}, {ID: 2}}, nil).
		Once()

	w := executeRequest(s.T(), s.app, http.MethodGet, "/admin/dashboard", nil, testAdminToken)

	s.Equal(http.StatusOK, w.Code)

	resp := decodeResponse[DashboardResponse](s.T(), w)

	s.True(resp.Success)
	s.Equal(12, resp.Dashboard.TotalBookings)
	s.Equal(9, resp.Dashboard.PaidBookings)
	s.Equal(3, resp.Dashboard.UnpaidBookings)
	s.Equal(40, resp.Dashboard.TotalUsers)
	s.Equal(2, resp.Dashboard.ActiveShows)
	s.True(decimal.RequireFromString("270.00").Equal(resp.Dashboard.TotalRevenue))

	s.bookingRepo.AssertExpectations(s.T())
	s.userRepo.AssertExpectations(s.T())
	s.showRepo.AssertExpectations(s.T())
}

func (s *AdminTestSuite) TestGetAllBookingsHandler() {
	s.Run("paginates with defaults", func() {
		booking := domain.AdminBooking{
			BookingDetail: domain.BookingDetail{
				Booking: domain.Booking{
					ID:        1,
					UserID:    testUserId,
					ShowID:    2,
					Amount:    decimal.RequireFromString("30.00"),
					Seats:     []string{"C1"},
					Paid:      true,
					CreatedAt: time.Now(),
				},
				MovieTitle: "Dune",
			},
			UserName:  "Sam",
			UserEmail: "moviegoer@example.com",
		}

		s.bookingRepo.On("GetAll", mock.Anything, domain.Pagination{Page: 1, PageSize: 20}).
			Return([]domain.AdminBooking{booking}, domain.NewMetadata(1, 1, 20), nil).
			Once()

		w := executeRequest(s.T(), s.app, http.MethodGet, "/admin/all-bookings", nil, testAdminToken)

		s.Equal(http.StatusOK, w.Code)

		resp := decodeResponse[AdminBookingsResponse](s.T(), w)

		s.Len(resp.Bookings, 1)
		s.Equal("Sam", resp.Bookings[0].User.Name)
		s.Equal(1, resp.Metadata.TotalRecords)

		s.bookingRepo.AssertExpectations(s.T())
	})

	s.Run("honors page parameters", func() {
		s.bookingRepo.On("GetAll", mock.Anything, domain.Pagination{Page: 3, PageSize: 5}).
			Return([]domain.AdminBooking{}, domain.NewMetadata(0, 3, 5), nil).
			Once()

		w := executeRequest(s.T(), s.app, http.MethodGet, "/admin/all-bookings?page=3&pageSize=5", nil, testAdminToken)

		s.Equal(http.StatusOK, w.Code)
		s.bookingRepo.AssertExpectations(s.T())
	})

	s.Run("rejects invalid pagination", func() {
		w := executeRequest(s.T(), s.app, http.MethodGet, "/admin/all-bookings?page=0", nil, testAdminToken)

		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})
}

func (s *AdminTestSuite) TestGetAllShowsHandler() {
	s.showRepo.On("GetUpcoming", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]domain.Show{
			{
				ID:        1,
				MovieID:   10,
				StartTime: time.Now().Add(time.Hour),
				Price:     decimal.RequireFromString("12.50"),
				Movie:     &domain.Movie{ID: 10, Title: "Dune"},
			},
		}, nil).
		Once()

	w := executeRequest(s.T(), s.app, http.MethodGet, "/admin/all-shows", nil, testAdminToken)

	s.Equal(http.StatusOK, w.Code)

	resp := decodeResponse[AdminShowsResponse](s.T(), w)

	s.Len(resp.Shows, 1)
	s.NotNil(resp.Shows[0].Movie)
	s.Equal("Dune", resp.Shows[0].Movie.Title)

	s.showRepo.AssertExpectations(s.T())
}
