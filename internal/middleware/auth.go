package middleware

import (
	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	scopeKey = "scope"
	userKey  = "user"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(userKey, claims)
		c.Next()
	}
}

// ScopeMiddleware 从数据库加载调用者当前的角色和分配范围，
// 管理员的修改在下一次请求即生效，无需重新签发令牌
func ScopeMiddleware(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		scope, user, err := users.LoadScope(c.Request.Context(), claims.UserID)
		if errors.Is(err, util.ErrUserNotFound) {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		if user.Disabled {
			util.Error(c, http.StatusForbidden, "account is disabled")
			c.Abort()
			return
		}

		c.Set(scopeKey, scope)
		c.Next()
	}
}

// GetScope 获取 ScopeMiddleware 保存的 ScopeContext
func GetScope(c *gin.Context) (service.ScopeContext, bool) {
	v, ok := c.Get(scopeKey)
	if !ok {
		return service.ScopeContext{}, false
	}
	scope, ok := v.(service.ScopeContext)
	return scope, ok
}

// RoleMiddleware 只放行列出的角色。优先使用已加载的权限范围中的角色，
// 否则使用令牌中的角色
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		var role model.UserRole
		if scope, ok := GetScope(c); ok {
			role = scope.Role
		} else if claims := util.GetUserFromContext(c); claims != nil {
			role = claims.Role
		} else {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}

// StaffOnly 放行所有内容管理角色
func StaffOnly() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin, model.RoleSubadmin, model.RoleWAECAdmin, model.RoleJAMBAdmin)
}
