package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Defendu/controllers"
	"github.com/Defendu/initializers"
	"github.com/Defendu/middlewares"
	"github.com/Defendu/services"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectDB()
	services.InitEmailService()
}

// newIdentityService picks the identity provider at process start: Firebase
// Auth when a service account is configured, otherwise the local account
// table. Malformed Firebase credentials are fatal here, not on first use.
func newIdentityService() services.IdentityService {
	if os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64") != "" {
		identity, err := services.NewFirebaseIdentityService(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		return identity
	}
	log.Println("FIREBASE_SERVICE_ACCOUNT_BASE64 not set, using database identity service")
	return services.NewDatabaseIdentityService()
}

func main() {
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	router.Use(middlewares.CORSMiddleware())
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	var mailer services.ResetMailer
	if emailService := services.GetEmailService(); emailService != nil {
		mailer = emailService
	}
	reset := controllers.NewPasswordResetController(
		services.NewTokenStore(initializers.DB),
		newIdentityService(),
		mailer,
	)

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.UserLogin)
	router.POST("/signup", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.UserSignup)
	router.GET("/check-username", middlewares.RateLimitMiddleware(5, 5, getKey), controllers.CheckUsernameAvailability)
	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	// Password reset endpoints
	router.POST("/api/password-reset", middlewares.RateLimitMiddleware(2, 2, getKey), reset.RequestPasswordReset)
	router.POST("/validate-reset-token", middlewares.RateLimitMiddleware(5, 5, getKey), reset.ValidateResetToken)
	router.POST("/confirm-password-reset", middlewares.RateLimitMiddleware(2, 2, getKey), reset.ConfirmPasswordReset)

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(10, 10, getKey))
	{
		// user routes
		auth.GET("/users/me", controllers.GetUserProfile)
		auth.PATCH("/users/me/password", controllers.ChangeUserPassword)

		// trainer application routes
		auth.POST("/trainer-applications", controllers.SubmitTrainerApplication)
		auth.GET("/trainer-applications/me", controllers.GetMyTrainerApplication)

		// published module catalog
		auth.GET("/modules", controllers.GetPublishedModules)

		// trainer-only module routes
		trainer := auth.Group("/")
		trainer.Use(middlewares.CheckTrainer)
		{
			trainer.POST("/modules", controllers.CreateTrainingModule)
			trainer.GET("/modules/mine", controllers.GetMyTrainingModules)
			trainer.PATCH("/modules/:training_module_id", controllers.UpdateTrainingModule)
			trainer.POST("/modules/:training_module_id/submit", controllers.SubmitTrainingModule)
		}

		// admin only routes
		admin := auth.Group("/")
		admin.Use(middlewares.CheckAdmin)
		admin.Use(middlewares.RateLimitMiddleware(5, 5, getKey))
		{
			admin.GET("/trainer-applications", controllers.GetTrainerApplications)
			admin.PATCH("/trainer-applications/:trainer_application_id", controllers.ReviewTrainerApplication)

			admin.GET("/admin/modules", controllers.GetModulesForReview)
			admin.PATCH("/admin/modules/:training_module_id/review", controllers.ReviewTrainingModule)

			admin.GET("/admin/analytics", controllers.GetAdminAnalytics)
		}
	}

	if err := router.Run(); err != nil {
		log.Fatal(err)
	}
}
