package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/giftify-next/internal/authz"
	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/config"
	adminhandlers "github.com/giftify-next/internal/http/handlers/admin"
	publichandlers "github.com/giftify-next/internal/http/handlers/public"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()

	apiV1 := r.Group("/api/v1")
	registerPublicRoutes(apiV1, publicHandler)
	registerAuthRoutes(apiV1, cfg, redisClient, publicHandler)
	registerUserRoutes(apiV1, cfg, c, publicHandler)
	registerAdminRoutes(r, apiV1, cfg, c, redisClient, adminHandler)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// loginRateRule 登录限流规则，前台与后台共用同一套阈值配置。
func loginRateRule(cfg *config.Config, name, message string) RateLimitRule {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "gf"
	}
	return RateLimitRule{
		Prefix:        prefix + ":rate:" + name,
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       message,
	}
}

// registerPublicRoutes 无需鉴权的公开接口
func registerPublicRoutes(apiV1 *gin.RouterGroup, h *publichandlers.Handler) {
	public := apiV1.Group("/public")
	{
		public.GET("/config", h.GetConfig)
		public.GET("/captcha/image", h.GetImageCaptcha)
	}
}

// registerAuthRoutes 粉丝/创作者注册登录
func registerAuthRoutes(apiV1 *gin.RouterGroup, cfg *config.Config, redisClient *redis.Client, h *publichandlers.Handler) {
	rule := loginRateRule(cfg, "login", "too many login attempts")
	auth := apiV1.Group("/auth")
	{
		auth.POST("/register", h.UserRegister)
		auth.POST("/login", RateLimitMiddleware(redisClient, rule, KeyByIPAndJSONField("email")), h.UserLogin)
	}
}

// registerUserRoutes 登录态用户接口：个人资料、礼物请求、创作者目录、通知
func registerUserRoutes(apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *publichandlers.Handler) {
	user := apiV1.Group("")
	user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	{
		user.GET("/me", h.GetCurrentUser)
		user.PUT("/me/profile", h.UpdateMyProfile)
		user.PUT("/me/password", h.ChangeMyPassword)
		user.GET("/me/login-logs", h.GetMyLoginLogs)
		user.GET("/me/fan-settings", h.GetMyFanSettings)
		user.PUT("/me/fan-settings", h.UpdateMyFanSettings)
		user.GET("/me/favorites", h.ListFavoriteCreators)

		user.POST("/gift-requests", h.CreateGiftRequest)
		user.GET("/gift-requests", h.ListGiftRequests)
		user.GET("/gift-requests/:request_no", h.GetGiftRequest)
		user.POST("/gift-requests/:request_no/respond", h.RespondGiftRequest)
		user.PUT("/gift-requests/:request_no/address", h.SubmitPickupAddress)
		user.PUT("/gift-requests/:request_no/item-details", h.UpdateGiftItemDetails)
		user.POST("/gift-requests/:request_no/pickup", h.MarkGiftPickedUp)
		user.POST("/gift-requests/:request_no/deliver", h.MarkGiftDelivered)

		user.GET("/creators", h.ListCreators)
		user.GET("/creators/:id", h.GetCreator)
		user.POST("/creators/:id/favorite", h.FavoriteCreator)
		user.DELETE("/creators/:id/favorite", h.UnfavoriteCreator)

		user.GET("/notifications", h.ListMyNotifications)
		user.GET("/notifications/unread-count", h.GetMyUnreadCount)
		user.POST("/notifications/:notification_no/read", h.MarkNotificationRead)
		user.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	}
}

// registerAdminRoutes 运营后台接口，登录外全部走 JWT + RBAC
func registerAdminRoutes(engine *gin.Engine, apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container, redisClient *redis.Client, h *adminhandlers.Handler) {
	admin := apiV1.Group("/admin")

	rule := loginRateRule(cfg, "admin_login", "too many login attempts")
	admin.POST("/login", RateLimitMiddleware(redisClient, rule, KeyByIP), h.AdminLogin)

	authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
	{
		// 仪表盘
		authorized.GET("/dashboard/overview", h.GetDashboardOverview)
		authorized.GET("/dashboard/trends", h.GetDashboardTrends)
		authorized.GET("/dashboard/rankings", h.GetDashboardRankings)

		// 礼物请求管理
		authorized.GET("/gift-requests", h.GetAdminGiftRequests)
		authorized.GET("/gift-requests/:request_no", h.GetAdminGiftRequest)
		authorized.PUT("/gift-requests/:request_no", h.UpdateAdminGiftRequest)
		authorized.DELETE("/gift-requests/:request_no", h.DeleteAdminGiftRequest)

		// 设置管理
		authorized.GET("/settings", h.GetSettings)
		authorized.PUT("/settings", h.UpdateSettings)
		authorized.GET("/settings/captcha", h.GetCaptchaSettings)
		authorized.PUT("/settings/captcha", h.UpdateCaptchaSettings)
		authorized.GET("/settings/gifting", h.GetGiftingSettings)
		authorized.PUT("/settings/gifting", h.UpdateGiftingSettings)
		authorized.GET("/settings/gifting/overrides", h.GetCreatorOverrides)
		authorized.PUT("/settings/gifting/overrides/:id", h.UpsertCreatorOverride)
		authorized.DELETE("/settings/gifting/overrides/:id", h.DeleteCreatorOverride)
		authorized.GET("/settings/logistics", h.GetLogisticsSettings)
		authorized.PUT("/settings/logistics", h.UpdateLogisticsSettings)
		authorized.PUT("/password", h.UpdateAdminPassword)

		// 权限管理
		authorized.GET("/authz/me", h.GetAuthzMe)
		authorized.GET("/authz/roles", h.ListAuthzRoles)
		authorized.GET("/authz/admins", h.ListAuthzAdmins)
		authorized.GET("/authz/audit-logs", h.ListAuthzAuditLogs)
		authorized.POST("/authz/admins", h.CreateAuthzAdmin)
		authorized.PUT("/authz/admins/:id", h.UpdateAuthzAdmin)
		authorized.DELETE("/authz/admins/:id", h.DeleteAuthzAdmin)
		authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
			response.Success(ctx, buildAdminPermissionCatalog(engine))
		})
		authorized.POST("/authz/roles", h.CreateAuthzRole)
		authorized.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
		authorized.GET("/authz/roles/:role/policies", h.GetAuthzRolePolicies)
		authorized.POST("/authz/policies", h.GrantAuthzPolicy)
		authorized.DELETE("/authz/policies", h.RevokeAuthzPolicy)
		authorized.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
		authorized.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)

		// 用户管理
		authorized.GET("/users", h.GetAdminUsers)
		authorized.GET("/user-login-logs", h.GetUserLoginLogs)
		authorized.PUT("/users/batch-status", h.BatchUpdateUserStatus)
		authorized.GET("/users/:id", h.GetAdminUser)
		authorized.PUT("/users/:id", h.UpdateAdminUser)
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 扫描已注册路由生成权限清单，供角色配置页展示。
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == http.MethodOptions || method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		// 登录接口不进权限清单
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
