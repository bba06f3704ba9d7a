package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
)

const myBookingsPath = "/dashboard/my-bookings"

type BookingHandler struct {
	bookings *services.BookingService
	payments *services.PaymentService
}

func NewBookingHandler(bookings *services.BookingService, payments *services.PaymentService) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments}
}

// flashError reports a failed action on the page it came from.
func flashError(c *gin.Context, sc *session.Context, path string, err error) {
	_ = c.Error(err)
	sc.Flash(models.LevelError, apperr.MessageOf(err))
	c.Redirect(http.StatusSeeOther, path)
}

// current fetches the booking as the backend has it now. Remembered copies
// are only what the user last saw and never gate an action.
func (h *BookingHandler) current(c *gin.Context, sc *session.Context, id string) (models.Booking, error) {
	return h.bookings.FindBooking(c.Request.Context(), sc.Email(), id)
}

// Book creates a booking for the service in the URL.
func (h *BookingHandler) Book(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	serviceID := c.Param("id")
	view := models.View{View: "service-detail", Title: "Book service", Data: gin.H{"serviceId": serviceID}}

	var req models.BookingRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), view)
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), sc.Identity(), serviceID, req.BookingDate, req.Location)
	if apperr.KindOf(err) == apperr.KindUnauthenticated {
		requireSignIn(c)
		return
	}
	if err != nil {
		renderError(c, err, view)
		return
	}
	redirect(c, sc, myBookingsPath, "Booked "+booking.ServiceName+" for "+booking.BookingDate.String())
}

func (h *BookingHandler) MyBookings(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	view := models.View{Title: "My bookings"}
	list, err := h.bookings.ListMyBookings(c.Request.Context(), sc.Email())
	if err != nil {
		view.Data = gin.H{"bookings": []models.Booking{}}
		renderError(c, err, view)
		return
	}
	sc.RememberBookings(list)
	view.Data = gin.H{"bookings": list}
	render(c, http.StatusOK, view)
}

// Cancel deletes a pending, unpaid booking once the user confirms.
func (h *BookingHandler) Cancel(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	var req models.ConfirmRequest
	_ = c.ShouldBind(&req)

	booking, err := h.current(c, sc, c.Param("id"))
	if err != nil {
		flashError(c, sc, myBookingsPath, err)
		return
	}
	if err := h.bookings.CancelBooking(c.Request.Context(), sc.Email(), booking, req.Confirm); err != nil {
		flashError(c, sc, myBookingsPath, err)
		return
	}
	sc.ForgetBooking(booking.ID)
	redirect(c, sc, myBookingsPath, "Booking cancelled")
}

// Pay sends the browser to the payment processor.
func (h *BookingHandler) Pay(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	booking, err := h.current(c, sc, c.Param("id"))
	if err != nil {
		flashError(c, sc, myBookingsPath, err)
		return
	}
	url, err := h.payments.StartCheckout(c.Request.Context(), booking)
	if err != nil {
		flashError(c, sc, myBookingsPath, err)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// PaymentSuccess verifies the processor's return. A return without both
// ids goes straight to the booking list.
func (h *BookingHandler) PaymentSuccess(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	sessionID, bookingID := c.Query("session_id"), c.Query("booking_id")
	if sessionID == "" || bookingID == "" {
		c.Redirect(http.StatusSeeOther, myBookingsPath)
		return
	}

	view := models.View{Title: "Payment"}
	verified, err := h.payments.VerifyPayment(c.Request.Context(), sessionID, bookingID)
	if apperr.KindOf(err) == apperr.KindVerification && verified == nil {
		c.Redirect(http.StatusSeeOther, myBookingsPath)
		return
	}
	if err != nil {
		view.Data = gin.H{"payment": verified}
		renderError(c, err, view)
		return
	}
	if b, ok := sc.RememberedBooking(bookingID); ok {
		b.Paid = true
		b.TransactionID = verified.TransactionID
		sc.UpdateRememberedBooking(b)
	}
	view.Data = gin.H{"payment": verified}
	view.Notification = &models.Notification{Level: models.LevelSuccess, Message: "Payment successful"}
	render(c, http.StatusOK, view)
}

func (h *BookingHandler) PaymentCancel(c *gin.Context) {
	render(c, http.StatusOK, models.View{
		Title:        "Payment cancelled",
		Data:         gin.H{"bookingId": c.Query("booking_id")},
		Notification: &models.Notification{Level: models.LevelInfo, Message: "Payment was cancelled; your booking is still pending"},
	})
}

func (h *BookingHandler) PaymentHistory(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	view := models.View{Title: "Payment history"}
	payments, err := h.payments.ListPayments(c.Request.Context(), sc.Email())
	if err != nil {
		view.Data = gin.H{"payments": []models.Payment{}}
		renderError(c, err, view)
		return
	}
	view.Data = gin.H{"payments": payments}
	render(c, http.StatusOK, view)
}

// Dashboard is the member overview: bookings and payments side by side.
func (h *BookingHandler) Dashboard(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	email := sc.Email()

	var bookings []models.Booking
	var payments []models.Payment
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		bookings, err = h.bookings.ListMyBookings(ctx, email)
		return err
	})
	g.Go(func() (err error) {
		payments, err = h.payments.ListPayments(ctx, email)
		return err
	})
	view := models.View{Title: "Dashboard"}
	if err := g.Wait(); err != nil {
		renderError(c, err, view)
		return
	}

	sc.RememberBookings(bookings)
	pending := 0
	for _, b := range bookings {
		if b.Status == models.BookingPending {
			pending++
		}
	}
	view.Data = gin.H{
		"bookings":        bookings,
		"payments":        payments,
		"pendingBookings": pending,
	}
	render(c, http.StatusOK, view)
}
