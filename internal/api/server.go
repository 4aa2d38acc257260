package api

import (
	"context"
	"html/template"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/docs"
	v1 "github.com/trinitydb/impossible-trinity/internal/api/handler/v1"
	"github.com/trinitydb/impossible-trinity/internal/api/middleware"
	"github.com/trinitydb/impossible-trinity/internal/api/web"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/repository"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

const limiterCleanupInterval = 10 * time.Minute

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	authLimiter *middleware.IPRateLimiter
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()
	if err := engine.SetTrustedProxies(conf.API.TrustedProxies); err != nil {
		zap.L().Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}
	engine.SetHTMLTemplate(template.Must(web.Templates()))

	s := &Server{
		Config:      conf,
		Router:      engine,
		authLimiter: middleware.NewIPRateLimiter(rate.Limit(conf.API.AuthRateLimit), conf.API.AuthRateBurst),
	}

	s.MountMiddlewares(s.initAuthenticator(db))

	authHandler := s.initAuthHandler(db)
	trinityHandler := s.initTrinityHandler(db)
	commentHandler := s.initCommentHandler(db)
	csvHandler := s.initCSVHandler(db)
	s.MountHandlers(authHandler, trinityHandler, commentHandler, csvHandler)

	return s
}

// RunLimiterCleanup drops idle rate-limit buckets until ctx is done.
func (s *Server) RunLimiterCleanup(ctx context.Context) {
	s.authLimiter.Run(ctx, limiterCleanupInterval)
}

func (s *Server) initAuthenticator(db *gorm.DB) *middleware.Authenticator {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)

	return middleware.NewAuthenticator(s.Config.API, svc)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initTrinityHandler(db *gorm.DB) *v1.TrinityHandler {
	trinityDAO := dao.NewTrinityDAO(db)
	repo := repository.NewTrinityRepository(trinityDAO)
	svc := service.NewTrinityService(repo)
	handler := v1.NewTrinityHandler(s.Config.Pagination, svc)

	return handler
}

func (s *Server) initCommentHandler(db *gorm.DB) *v1.CommentHandler {
	commentDAO := dao.NewCommentDAO(db)
	repo := repository.NewCommentRepository(commentDAO)
	trinityRepo := repository.NewTrinityRepository(dao.NewTrinityDAO(db))
	svc := service.NewCommentService(repo, trinityRepo)
	handler := v1.NewCommentHandler(svc)

	return handler
}

func (s *Server) initCSVHandler(db *gorm.DB) *v1.CSVHandler {
	trinityDAO := dao.NewTrinityDAO(db)
	repo := repository.NewTrinityRepository(trinityDAO)
	svc := service.NewTrinityService(repo)
	handler := v1.NewCSVHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares(authenticator *middleware.Authenticator) {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.SecurityHeaders())
	s.Router.Use(authenticator.LoadSession())
	s.Router.Use(middleware.RequestLogger())
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, trinityHandler *v1.TrinityHandler, commentHandler *v1.CommentHandler, csvHandler *v1.CSVHandler) {
	public := s.Router.Group("/")
	{
		public.GET("/", trinityHandler.HandleIndex)
		public.GET("/detail/:id", trinityHandler.HandleDetail)
		public.GET("/login", authHandler.HandleLoginPage)
		public.GET("/register", authHandler.HandleRegisterPage)
		public.GET("/logout", authHandler.HandleLogout)
		public.GET("/healthz", v1.HandleHealthcheck)
	}

	limited := s.Router.Group("/", middleware.RateLimit(s.authLimiter))
	{
		limited.POST("/login", authHandler.HandleLogin)
		limited.POST("/register", authHandler.HandleRegister)
	}

	api := s.Router.Group("/api")
	{
		api.GET("/its", trinityHandler.HandleListAPI)
		api.GET("/fields", trinityHandler.HandleFieldsAPI)
	}

	users := s.Router.Group("/", middleware.RequireLogin())
	{
		users.GET("/add", trinityHandler.HandleAddPage)
		users.POST("/add", trinityHandler.HandleAdd)
		users.GET("/edit/:id", trinityHandler.HandleEditPage)
		users.POST("/edit/:id", trinityHandler.HandleEdit)
		users.POST("/delete/:id", trinityHandler.HandleDelete)
		users.GET("/dashboard", trinityHandler.HandleDashboard)
		users.POST("/comment/:id", commentHandler.HandleAddComment)
		users.POST("/comment/delete/:id", commentHandler.HandleDeleteComment)
	}

	s.Router.POST("/agree/:id", middleware.RequireLoginJSON(), trinityHandler.HandleAgree)

	admin := s.Router.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("", trinityHandler.HandleAdmin)
		admin.GET("/export", csvHandler.HandleExport)
		admin.POST("/import", csvHandler.HandleImport)
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "Impossible Trinity Database"
	docs.SwaggerInfo.Description = "JSON endpoints of the Impossible Trinity Database site."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
