package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Diyor-ux/star/internal/config"
	"github.com/Diyor-ux/star/internal/database"
	"github.com/Diyor-ux/star/internal/handler"
	"github.com/Diyor-ux/star/internal/queue"
	"github.com/Diyor-ux/star/internal/repository"
	"github.com/Diyor-ux/star/internal/router"
	"github.com/Diyor-ux/star/internal/service"
)

func main() {
	// A missing .env is fine in containerized deploys; config.Load still
	// enforces the required variables.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and response cache disabled")
	}

	employees := repository.NewEmployeeRepo(db)
	customers := repository.NewCustomerRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	reservations := repository.NewReservationRepo(db)
	apiKeys := repository.NewAPIKeyRepo(db)

	engine := service.NewEngine(reservations)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Auth: &handler.AuthHandler{
			Employees:   employees,
			Customers:   customers,
			JWTSecret:   cfg.JWTSecret,
			EmployeeTTL: time.Duration(cfg.EmployeeTTLHours) * time.Hour,
			CustomerTTL: time.Duration(cfg.CustomerTTLDays) * 24 * time.Hour,
			BcryptCost:  cfg.BcryptCost,
		},
		Products:   &handler.ProductHandler{Products: products},
		Categories: &handler.CategoryHandler{Categories: categories},
		Customers:  &handler.CustomerHandler{Customers: customers},
		Reservations: &handler.ReservationHandler{
			Engine:       engine,
			Reservations: reservations,
			Publish:      service.PublishReservationCreated,
		},
		APIKeys:   &handler.APIKeyHandler{Keys: apiKeys},
		Health:    handler.Health(db),
		Employees: employees,
		CustSrc:   customers,
		Keys:      apiKeys,
	})

	// Audit-trail consumer; reconnects on its own if the broker drops.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
