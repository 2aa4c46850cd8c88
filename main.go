// Command biblioteka-go serves a library-management REST API: CRUD over
// books and authors backed by PostgreSQL, with cookie-based session
// authentication and role-gated writes.
//
// @title Biblioteka API
// @version 1.0
// @description Library management API: books, authors, authentication.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/biblioteka-go/auth"
	"github.com/user/biblioteka-go/authors"
	"github.com/user/biblioteka-go/books"
	"github.com/user/biblioteka-go/config"
	"github.com/user/biblioteka-go/db"
	_ "github.com/user/biblioteka-go/docs" // generated Swagger docs
	"github.com/user/biblioteka-go/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := books.RegisterValidations(validate); err != nil {
		log.Fatalf("Failed to register validations: %v", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Hash)
	tokens := auth.NewTokenIssuer(cfg.Auth)
	authService := auth.NewAuthService(pool, hasher, tokens)
	authHandlers := auth.NewHandlers(authService, validate, cfg.Auth.CookieMaxAge)

	authorService := authors.NewAuthorService(pool)
	authorHandlers := authors.NewHandlers(authorService, validate)

	bookService := books.NewBookService(pool)
	bookHandlers := books.NewHandlers(bookService, validate)

	protect := auth.Protect(authService)
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(web.RequestTime)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(web.NotFoundHandler())
	r.MethodNotAllowed(web.MethodNotAllowedHandler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/logout", authHandlers.HandleLogout())
		})
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		bookHandlers.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(protect, adminOnly)
			bookHandlers.RegisterAdminRoutes(r)
		})
	})

	r.Route("/api/v1/authors", func(r chi.Router) {
		authorHandlers.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(protect, adminOnly)
			authorHandlers.RegisterAdminRoutes(r)
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
