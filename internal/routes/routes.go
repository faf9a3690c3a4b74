package routes

import (
	"github.com/carebridge/backend/internal/controllers"
	"github.com/carebridge/backend/internal/events"
	"github.com/carebridge/backend/internal/middleware"
	"github.com/carebridge/backend/internal/services"
	"github.com/carebridge/backend/internal/wizard"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, db *gorm.DB, bus *events.Bus, store *wizard.Store, mailer *services.Mailer) {
	// Initialize controllers
	authController := controllers.NewAuthController(db, mailer)
	userController := controllers.NewUserController(db)
	leadController := controllers.NewLeadController(db, bus)
	onboardingController := controllers.NewOnboardingController(db, bus, store)
	questionController := controllers.NewQuestionController(db)
	settingsController := controllers.NewSettingsController(db)
	metricsController := controllers.NewMetricsController(db)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/forgot-password", authController.ForgotPassword)
			auth.POST("/reset-password", authController.ResetPassword)
		}

		// Second-factor routes, reachable with the pending token issued by login
		mfa := api.Group("/auth/mfa")
		mfa.Use(middleware.PendingAuthMiddleware())
		{
			mfa.POST("/enroll", authController.MFAEnroll)
			mfa.POST("/verify", authController.MFAVerify)
		}

		// Public intake wizard; a valid session token attributes the lead
		onboarding := api.Group("/onboarding")
		onboarding.Use(middleware.OptionalAuthMiddleware())
		{
			onboarding.POST("", onboardingController.StartSession)
			onboarding.GET("/:id", onboardingController.GetSession)
			onboarding.PATCH("/:id", onboardingController.SetFields)
			onboarding.POST("/:id/next", onboardingController.Next)
			onboarding.POST("/:id/back", onboardingController.Back)
			onboarding.POST("/:id/submit", onboardingController.Submit)
			onboarding.DELETE("/:id", onboardingController.CloseSession)
		}

		// Published wizard copy for the public site
		api.GET("/questions/active", questionController.GetActiveQuestions)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/auth/refresh", authController.RefreshToken)
			protected.POST("/auth/change-password", authController.ChangePassword)

			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.GET("", userController.GetUsers)
				users.GET("/managers", userController.GetManagers)
				users.PUT("/:id/role", userController.UpdateUserRole)
				users.PUT("/:id/crud-flag", userController.UpdateCrudFlag)
				users.DELETE("/:id/role", userController.RemoveUserRole)
				users.PUT("/:id/profile", userController.UpdateProfile)
			}

			// Leads
			leads := protected.Group("/leads")
			{
				leads.GET("", leadController.GetLeads)
				leads.GET("/subscribe", leadController.Subscribe)
				leads.POST("", leadController.CreateLead)
				leads.GET("/:id", leadController.GetLead)
				leads.PATCH("/:id", leadController.UpdateLead)
				leads.DELETE("/:id", leadController.DeleteLead)
				leads.POST("/:id/notes", leadController.AddNote)
				leads.POST("/:id/tags/:tag", leadController.ToggleTag)
			}

			// Wizard content management
			questions := protected.Group("/questions")
			{
				questions.GET("", questionController.GetQuestions)
				questions.POST("", questionController.CreateQuestion)
				questions.PUT("/:id", questionController.UpdateQuestion)
				questions.DELETE("/:id", questionController.DeleteQuestion)
			}

			// Metrics
			metrics := protected.Group("/metrics")
			{
				metrics.GET("/stats", metricsController.GetStats)
				metrics.GET("/series", metricsController.GetSeries)
			}

			// Notification settings
			settings := protected.Group("/settings")
			{
				settings.GET("/notifications", settingsController.GetNotificationSettings)
				settings.PUT("/notifications", settingsController.UpdateNotificationSettings)
			}
		}
	}
}
