package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/api/handlers"
	"github.com/fairwaylabs/caddie/internal/services"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, book *services.Caddiebook, caddie *services.CaddieService, weather *services.WeatherService, logger *logrus.Logger) {
	courseHandler := handlers.NewCourseHandler(book, logger)
	roundHandler := handlers.NewRoundHandler(book, weather, logger)
	caddieHandler := handlers.NewCaddieHandler(caddie, logger)
	profileHandler := handlers.NewProfileHandler(book, logger)

	// Course endpoints
	group.GET("/courses", courseHandler.ListCourses)
	group.POST("/courses", courseHandler.CreateCourse)
	group.GET("/courses/:id", courseHandler.GetCourse)
	group.POST("/courses/:id/holes/:number/notes", courseHandler.AddHoleNote)

	// Round endpoints, keyed by course and date
	group.POST("/courses/:id/rounds", roundHandler.StartRound)
	group.GET("/courses/:id/rounds/:date", roundHandler.GetRound)
	group.POST("/courses/:id/rounds/:date/shots", roundHandler.LogShot)

	// Caddie conversation
	group.POST("/courses/:id/rounds/:date/chat", caddieHandler.Chat)

	// Player profile
	group.GET("/profile", profileHandler.GetProfile)
	group.POST("/profile/tendencies", profileHandler.AddTendency)
}
