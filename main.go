// Package main library catalog API.
//
// @title           Library Database API
// @version         1.0
// @description     Library catalog service (books, stock, wishlists, rentals, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/carry-jpg/LibraryDatabase/app/echoServer"
	authctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/auth"
	bookctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/book"
	rentalctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/rental"
	stockctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/stock"
	userctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/user"
	wishlistctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/wishlist"
	"github.com/carry-jpg/LibraryDatabase/app/echoServer/validation"
	"github.com/carry-jpg/LibraryDatabase/config"
	bookrepo "github.com/carry-jpg/LibraryDatabase/repository/book"
	"github.com/carry-jpg/LibraryDatabase/repository/openlibrary"
	rentalrepo "github.com/carry-jpg/LibraryDatabase/repository/rental"
	stockrepo "github.com/carry-jpg/LibraryDatabase/repository/stock"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
	wishlistrepo "github.com/carry-jpg/LibraryDatabase/repository/wishlist"
	authsvc "github.com/carry-jpg/LibraryDatabase/service/auth"
	booksvc "github.com/carry-jpg/LibraryDatabase/service/book"
	rentalsvc "github.com/carry-jpg/LibraryDatabase/service/rental"
	stocksvc "github.com/carry-jpg/LibraryDatabase/service/stock"
	usersvc "github.com/carry-jpg/LibraryDatabase/service/user"
	wishlistsvc "github.com/carry-jpg/LibraryDatabase/service/wishlist"
	"github.com/carry-jpg/LibraryDatabase/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// OpenLibrary edition cache is optional; without Redis every lookup
	// goes straight upstream.
	var editionCache openlibrary.EditionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, edition cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			editionCache = openlibrary.NewRedisCache(rdb, time.Hour)
		}
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	sr := stockrepo.New(db)
	rr := rentalrepo.New(db)
	wr := wishlistrepo.New(db)
	ol := openlibrary.NewHTTP(cfg.OpenLibraryBase, editionCache)

	// services
	as := authsvc.New(ur)
	us := usersvc.New(ur)
	bs := booksvc.New(br, ol)
	ss := stocksvc.New(sr, br, ol)
	rs := rentalsvc.New(db, rr, sr)
	ws := wishlistsvc.New(wr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{
		Svc: as, V: v, Log: log,
		JWTSecret:  cfg.JWTSecret,
		CookieName: cfg.SessionCookie,
		TTLHours:   cfg.SessionTTLHours,
		Secure:     cfg.Env == "prod",
	}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	stockC := &stockctrl.Controller{Svc: ss, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	wishlistC := &wishlistctrl.Controller{Svc: ws, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Stock:    stockC,
		Rental:   rentalC,
		Wishlist: wishlistC,
		User:     userC,

		Users:         ur,
		JWTSecret:     cfg.JWTSecret,
		SessionCookie: cfg.SessionCookie,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
