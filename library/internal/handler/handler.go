package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
	md "github.com/Astemirdum/library-borrowing/pkg/middleware"
	"github.com/Astemirdum/library-borrowing/pkg/session"
	"github.com/Astemirdum/library-borrowing/pkg/validate"
	_ "github.com/Astemirdum/library-borrowing/swagger"
)

type Options struct {
	SecureCookie bool
	CORSOrigins  []string
}

type Handler struct {
	librarySvc LibraryService
	tokens     *auth.TokenManager
	revoker    session.Revoker
	opts       Options
	log        *zap.Logger
}

func New(librarySvc LibraryService, tokens *auth.TokenManager, revoker session.Revoker, opts Options, log *zap.Logger) *Handler {
	if revoker == nil {
		revoker = session.Noop{}
	}
	return &Handler{
		librarySvc: librarySvc,
		tokens:     tokens,
		revoker:    revoker,
		opts:       opts,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     h.opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("",
		middleware.RequestID(),
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.NewRateLimiter(apiRPS),
	)
	sessionMW := md.SessionAuth(h.tokens, h.revoker, h.librarySvc, h.log)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/user", h.GetUser, sessionMW)
	authGroup.GET("/total-users", h.TotalUsers, sessionMW)
	authGroup.GET("/get-all-users", h.ListUsers, sessionMW)

	books := api.Group("/books", sessionMW)
	books.GET("", h.ListBooks)
	books.GET("/", h.ListBooks)
	books.POST("/add", h.AddBook)
	books.POST("/update/:id", h.UpdateBook)
	books.POST("/delete/:id", h.DeleteBook)
	books.GET("/total-books", h.TotalBooks)

	borrowings := api.Group("/borrowings", sessionMW)
	borrowings.GET("", h.ListBorrowings)
	borrowings.GET("/", h.ListBorrowings)
	borrowings.POST("/add", h.CreateBorrowing)
	borrowings.POST("/update", h.ReturnBorrowing)
	borrowings.GET("/total-borrowings", h.TotalBorrowings)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func sessionUserID(c echo.Context) (string, error) {
	id, ok := auth.GetUserID(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func pageRequest(c echo.Context) (model.PageRequest, error) {
	var (
		err error
		p   = model.PageRequest{Search: c.QueryParam("search")}
	)
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p.Page, err = strconv.Atoi(pageParam); err != nil {
			return p, echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if p.Limit, err = strconv.Atoi(limitParam); err != nil {
			return p, echo.NewHTTPError(http.StatusBadRequest, "limit is invalid")
		}
	}
	p = p.Normalize()
	if !p.InRange() {
		return p, echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
	}
	return p, nil
}

func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
