package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/auth"
	bookctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/book"
	rentalctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/rental"
	stockctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/stock"
	userctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/user"
	wishlistctrl "github.com/carry-jpg/LibraryDatabase/app/echoServer/controller/wishlist"
	"github.com/carry-jpg/LibraryDatabase/app/echoServer/session"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
)

type C struct {
	Auth     *authctrl.Controller
	Book     *bookctrl.Controller
	Stock    *stockctrl.Controller
	Rental   *rentalctrl.Controller
	Wishlist *wishlistctrl.Controller
	User     *userctrl.Controller

	Users         userrepo.Repo
	JWTSecret     string
	SessionCookie string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.POST("/auth/logout", c.Auth.Logout)

	// Catalog browsing needs no session.
	pub.GET("/stock/list", c.Stock.List)
	pub.GET("/openlibrary/search", c.Book.Search)
	pub.GET("/openlibrary/edition", c.Book.Edition)

	// Session-scoped
	authed := e.Group("/api")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "cookie:" + c.SessionCookie + ",header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
		},
	}))
	authed.Use(session.Principal(c.Users))

	authed.GET("/auth/me", c.Auth.Me)

	authed.POST("/wishlist/toggle", c.Wishlist.Toggle)
	authed.GET("/wishlist/ids", c.Wishlist.IDs)
	authed.GET("/wishlist/list", c.Wishlist.List)

	authed.POST("/rentals/request", c.Rental.Request)
	authed.GET("/rentals/my", c.Rental.My)

	// Admin
	admin := authed.Group("", session.RequireAdmin())

	admin.POST("/openlibrary/resolve-editions", c.Book.ResolveEditions)
	admin.POST("/books/import-edition", c.Book.ImportEdition)

	admin.POST("/stock/set", c.Stock.Set)
	admin.POST("/stock/delete", c.Stock.Delete)

	admin.GET("/rentals/admin/requests", c.Rental.AdminRequests)
	admin.GET("/rentals/admin/approved", c.Rental.AdminApproved)
	admin.GET("/rentals/admin/active", c.Rental.AdminActive)
	admin.POST("/rentals/admin/approve", c.Rental.AdminApprove)
	admin.POST("/rentals/admin/dismiss", c.Rental.AdminDismiss)
	admin.POST("/rentals/admin/complete", c.Rental.AdminComplete)

	admin.GET("/wishlist/admin/summary", c.Wishlist.AdminSummary)

	admin.GET("/admin/users", c.User.List)
	admin.POST("/admin/users/role", c.User.SetRole)
}
