package api

import (
	"database/sql"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todoapi/internal/config"
	"todoapi/internal/domain"
	h "todoapi/internal/http/handlers"
	"todoapi/internal/http/middleware"
	"todoapi/internal/http/respond"
	"todoapi/internal/repositories"
	"todoapi/internal/services"
)

func NewRouter(env config.Env, db *sql.DB) *gin.Engine {
	em := respond.Emitter{Dev: env.IsDevelopment()}
	users := repositories.UserRepository{DB: db}
	todos := repositories.TodoRepository{DB: db}
	secret := []byte(env.JWTSecret)

	authHandler := h.AuthHandler{Users: users, Secret: secret, TokenTTL: env.JWTTTL, Em: em}
	todoHandler := h.TodoHandler{Todos: todos, Export: services.ExportService{Todos: todos}, Em: em}
	system := h.SystemHandler{DB: db}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), corsLayer(env))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		em.Error(c, domain.NewError(fmt.Sprintf("Can't find %s on this server", c.Request.URL.Path), stdhttp.StatusNotFound))
	})

	requireAuth := middleware.RequireAuth(secret, users, em)

	api := r.Group("/api")
	{
		api.GET("/health", system.Health)
		api.GET("/db-check", system.DBCheck)

		v1 := api.Group("/v1")

		usersGroup := v1.Group("/users")
		usersGroup.POST("/signup", authHandler.Signup)
		usersGroup.POST("/login", authHandler.Login)
		usersGroup.POST("/logout", authHandler.Logout)
		usersGroup.GET("/me", requireAuth, authHandler.Me)

		todosGroup := v1.Group("/todos")
		todosGroup.Use(requireAuth)
		todosGroup.GET("", todoHandler.List)
		todosGroup.POST("", todoHandler.Create)
		todosGroup.GET("/:id", todoHandler.Get)
		todosGroup.PATCH("/:id", todoHandler.Update)
		todosGroup.DELETE("/:id", todoHandler.Delete)

		exportGroup := v1.Group("/export")
		exportGroup.Use(requireAuth)
		exportGroup.GET("/todos.pdf", todoHandler.ExportPDF)
	}

	return r
}

func corsLayer(env config.Env) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: true,
	}
	if len(env.CORSOrigins) > 0 {
		cfg.AllowOrigins = env.CORSOrigins
	} else {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
