package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-blog-api/internal/core/auth"
	"go-blog-api/internal/core/config"
	"go-blog-api/internal/transport/http/handler"
	mdw "go-blog-api/internal/transport/http/middleware"
	resp "go-blog-api/internal/transport/http/response"
)

func NewAPIEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, users *handler.UserHandler, posts *handler.PostHandler) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(cfg.Limits.RPS), cfg.Limits.Burst),
		mdw.ConcurrencyLimit(cfg.Limits.Concurrency),
		mdw.MaxBodyBytes(cfg.Limits.MaxBodyBytes),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 上传文件直接静态回源
	r.Static("/uploads", cfg.Upload.Dir)

	r.NoRoute(func(c *gin.Context) {
		resp.ErrorMsg(c, http.StatusNotFound, "not found")
	})

	authed := mdw.AuthJWT(jwter)
	api := r.Group("/api")

	u := api.Group("/users")
	{
		u.POST("/register", users.Register)
		u.POST("/login", users.Login)
		u.GET("/authors", users.Authors)
		u.GET("/:id", users.Get)
		u.POST("/change-avatar", authed, users.ChangeAvatar)
		u.PATCH("/edit-user", authed, users.Edit)
	}

	p := api.Group("/posts")
	{
		p.POST("", authed, posts.Create)
		p.GET("", posts.List)
		p.GET("/:id", posts.Get)
		p.GET("/categories/:category", posts.ByCategory)
		p.GET("/users/:id", posts.ByCreator)
		p.PATCH("/:id", authed, posts.Edit)
		p.DELETE("/:id", authed, posts.Delete)
	}

	return r
}
