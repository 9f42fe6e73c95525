package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/http/middleware"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// Options параметры HTTP слоя, не относящиеся к хэндлерам.
type Options struct {
	Production      bool
	AllowedOrigins  []string
	MediaRoot       string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

type Handlers struct {
	Accounts *handler.AccountHandler
	Listings *handler.ListingHandler
	Chats    *handler.ChatHandler
	Health   *handler.HealthHandler
	// WS может быть nil, тогда /api/ws не регистрируется.
	WS       *handler.WSHandler
}

func SetupRouter(opts Options, h Handlers, tokens middleware.AccessParser) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if opts.MediaRoot != "" {
		r.StaticFS(dto.MediaPrefix, http.Dir(opts.MediaRoot))
	}

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokens)
	clientOnly := middleware.RequireRole(valueobject.RoleClient, apperror.ErrClientOnly)
	freelancerOnly := middleware.RequireRole(valueobject.RoleFreelancer, apperror.ErrFreelancerOnly)

	accounts := api.Group("/accounts")
	{
		limited := middleware.RateLimitMiddleware(opts.RateLimitLimit, opts.RateLimitPeriod)
		accounts.POST("/register", limited, h.Accounts.Register)
		accounts.POST("/login", limited, h.Accounts.Login)
		accounts.POST("/refresh", h.Accounts.Refresh)
		accounts.POST("/logout", auth, h.Accounts.Logout)

		accounts.GET("/profile", auth, h.Accounts.GetProfile)
		accounts.PUT("/profile", auth, h.Accounts.UpdateProfile)
		accounts.PATCH("/profile", auth, h.Accounts.UpdateProfile)

		accounts.GET("/freelancers", h.Accounts.ListFreelancers)
		accounts.GET("/freelancer/:username", h.Accounts.GetFreelancer)
		accounts.GET("/freelancer/:username/reviews", h.Accounts.ListReviews)
		accounts.POST("/freelancer/:username/review", auth, clientOnly, h.Accounts.CreateReview)
		accounts.GET("/top-freelancers", h.Accounts.TopFreelancers)
		accounts.GET("/skills", h.Accounts.ListSkills)
		accounts.GET("/search/freelancers", h.Accounts.SearchFreelancers)
	}

	listings := api.Group("/listings")
	{
		listings.POST("/create", auth, clientOnly, h.Listings.Create)
		listings.GET("/open", h.Listings.ListOpen)
		listings.GET("/open/matched", auth, h.Listings.MatchListings)
		listings.GET("/search", h.Listings.Search)
		listings.GET("/mine", auth, h.Listings.Mine)
		listings.GET("/matched-freelancers", auth, clientOnly, h.Listings.MatchFreelancers)

		listings.GET("/:slug", h.Listings.Get)
		listings.PUT("/:slug/update", auth, h.Listings.Update)
		listings.PATCH("/:slug/update", auth, h.Listings.Update)
		listings.POST("/:slug/take", auth, freelancerOnly, h.Listings.Take)
		listings.GET("/:slug/interests", auth, clientOnly, h.Listings.Interests)
		listings.POST("/:slug/select", auth, clientOnly, h.Listings.Select)
		listings.POST("/:slug/close", auth, clientOnly, h.Listings.Close)
	}

	chats := api.Group("/chat")
	chats.Use(auth)
	{
		chats.POST("/start", h.Chats.Start)
		chats.GET("", h.Chats.List)
		chats.GET("/:id", middleware.UUIDValidator("id"), h.Chats.Get)
		chats.DELETE("/:id", middleware.UUIDValidator("id"), h.Chats.Delete)
		chats.POST("/:id/message", middleware.UUIDValidator("id"), h.Chats.SendMessage)
		chats.POST("/:id/read", middleware.UUIDValidator("id"), h.Chats.MarkRead)
	}

	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	return r
}
