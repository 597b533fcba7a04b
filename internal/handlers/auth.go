package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

// AuthClaims are the JWT claims issued after the Discord OAuth exchange.
type AuthClaims struct {
	UserID    uint   `json:"user_id"`
	DiscordID string `json:"discord_id"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware validates bearer tokens and loads the user they name.
type JWTAuthMiddleware struct {
	secret   []byte
	userRepo repositories.UserRepository
}

func NewJWTAuthMiddleware(secret string, userRepo repositories.UserRepository) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		secret:   []byte(secret),
		userRepo: userRepo,
	}
}

// GenerateToken issues a signed token for the given user.
func (m *JWTAuthMiddleware) GenerateToken(user *models.User, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID:    user.ID,
		DiscordID: user.DiscordID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// AuthMiddleware validates the Authorization header and sets user_id, user
// and user_roles in the gin context.
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing authorization header"})
			c.Abort()
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
			c.Abort()
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User no longer exists"})
			} else {
				c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load user"})
			}
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_roles", user.RoleList())

		c.Next()
	}
}

// RequireRoleMiddleware rejects requests whose user holds none of the given
// roles. Admin always passes.
func (m *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "User role not found in context"})
			c.Abort()
			return
		}

		user, ok := v.(*models.User)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Invalid user format"})
			c.Abort()
			return
		}

		if !user.HasAnyRole(requiredRoles...) && !user.HasAnyRole(models.RoleAdmin) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
