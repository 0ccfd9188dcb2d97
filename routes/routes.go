package routes

import (
	"time"

	"radbook/handlers"
	"radbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine) {
	booking := r.Group("/api/booking")
	{
		booking.Use(middleware.JWTAuthPatientMiddleware())
		booking.POST("/session", handlers.StartBookingSession)
		booking.GET("/session/:sessionID", handlers.GetBookingSession)
		booking.GET("/session/:sessionID/availability", handlers.GetAvailability)
		booking.POST("/session/:sessionID/selection", handlers.ProposeSelection)
		booking.DELETE("/session/:sessionID/selection", handlers.ClearSelection)
		booking.POST("/session/:sessionID/draft", handlers.CreateDraft)
		booking.DELETE("/session/:sessionID/draft", handlers.DiscardDraft)
		booking.POST("/session/:sessionID/confirm", handlers.ConfirmBooking)
		booking.DELETE("/session/:sessionID", handlers.EndBookingSession)
	}
}

// RegisterAppointmentRoutes sets up the patient appointment endpoints.
func RegisterAppointmentRoutes(r *gin.Engine) {
	appointments := r.Group("/api/appointments")
	{
		appointments.Use(middleware.JWTAuthPatientMiddleware())
		appointments.GET("/mine", handlers.ListMyAppointments)
		appointments.DELETE("/:appointmentID", handlers.CancelAppointment)
	}
}

// RegisterReferenceRoutes sets up the read-only reference endpoints.
func RegisterReferenceRoutes(r *gin.Engine) {
	refs := r.Group("/api/references")
	{
		refs.Use(middleware.JWTAuthPatientMiddleware())
		refs.GET("/organizations", handlers.ListOrganizations)
		refs.GET("/organizations/:organizationID/branches", handlers.ListBranches)
		refs.GET("/branches/:branchID/services", handlers.ListServices)
		refs.GET("/services/:serviceID/procedures", handlers.ListProcedures)
	}
}

// RegisterAgentRoutes sets up the booking-agent chat endpoints.
func RegisterAgentRoutes(r *gin.Engine) {
	chat := r.Group("/api/chat")
	{
		chat.Use(middleware.JWTAuthPatientMiddleware())
		chat.POST("", handlers.ChatHandler)
		chat.DELETE("", handlers.ClearChatHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r)
	RegisterAppointmentRoutes(r)
	RegisterReferenceRoutes(r)
	RegisterAgentRoutes(r)
}
