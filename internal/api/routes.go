package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// SetupRoutes registers the GraphQL endpoint and the health check.
func SetupRoutes(router *gin.Engine, handler *Handler, corsOrigins []string) {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	router.Use(RequestLogger(handler.logger), cors.New(corsConfig(corsOrigins)))

	router.GET("/health", handler.Health)

	gql := router.Group(handler.path, handler.Timeout())
	{
		gql.POST("", handler.PostGraphQL)
		gql.GET("", handler.GetGraphQL)
	}
}

// NewRouter builds a gin engine with recovery and the routes of handler.
func NewRouter(handler *Handler, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, handler, corsOrigins)
	return router
}
