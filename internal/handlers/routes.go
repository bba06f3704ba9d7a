package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers is the full set of browser-facing handlers.
type Handlers struct {
	Health    *HealthHandler
	Session   *SessionHandler
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Catalog   *CatalogHandler
	Bookings  *BookingHandler
	Admin     *AdminHandler
	Decorator *DecoratorHandler
	Realtime  *RealtimeHandler
}

// Register mounts every route. Health is served without a session; all
// other routes run behind the given middleware (session then guard).
func (h *Handlers) Register(router *gin.Engine, middleware ...gin.HandlerFunc) {
	router.GET("/health", h.Health.Health)

	app := router.Group("/", middleware...)
	{
		app.GET("/", h.Catalog.Home)
		app.GET("/about", h.Catalog.About)
		app.GET("/contact", h.Catalog.Contact)
		app.GET("/services", h.Catalog.ListServices)
		app.GET("/services/:id", h.Catalog.GetService)
		app.POST("/services/:id/book", h.Bookings.Book)

		app.GET("/login", h.Auth.LoginPage)
		app.POST("/login", h.Auth.Login)
		app.GET("/register", h.Auth.RegisterPage)
		app.POST("/register", h.Auth.Register)
		app.POST("/logout", h.Auth.Logout)

		app.GET("/payment/success", h.Bookings.PaymentSuccess)
		app.GET("/payment/cancel", h.Bookings.PaymentCancel)

		app.GET("/session", h.Session.GetStatus)
		app.POST("/session/refresh-role", h.Session.RefreshRole)
		app.GET("/ws", h.Realtime.Connect)
	}

	dashboard := app.Group("/dashboard")
	{
		dashboard.GET("", h.Bookings.Dashboard)
		dashboard.GET("/profile", h.Profile.GetProfile)
		dashboard.POST("/profile", h.Profile.UpdateProfile)
		dashboard.GET("/my-bookings", h.Bookings.MyBookings)
		dashboard.POST("/my-bookings/:id/cancel", h.Bookings.Cancel)
		dashboard.POST("/my-bookings/:id/pay", h.Bookings.Pay)
		dashboard.GET("/payment-history", h.Bookings.PaymentHistory)

		dashboard.GET("/manage-services", h.Admin.ManageServices)
		dashboard.POST("/manage-services", h.Admin.CreateService)
		dashboard.POST("/manage-services/:id", h.Admin.UpdateService)
		dashboard.POST("/manage-services/:id/delete", h.Admin.DeleteService)
		dashboard.GET("/manage-bookings", h.Admin.ManageBookings)
		dashboard.POST("/manage-bookings/:id/assign", h.Admin.AssignDecorator)
		dashboard.GET("/manage-users", h.Admin.ManageUsers)
		dashboard.POST("/manage-users/:email/make-decorator", h.Admin.MakeDecorator)
		dashboard.POST("/manage-users/:email/status", h.Admin.SetDecoratorStatus)
	}

	decorator := app.Group("/decorator")
	{
		decorator.GET("", h.Decorator.Home)
		decorator.GET("/my-projects", h.Decorator.MyProjects)
		decorator.POST("/my-projects/:id/status", h.Decorator.UpdateStatus)
		decorator.GET("/earnings", h.Decorator.Earnings)
	}

	router.NoRoute(append(middleware, NotFound)...)
}
