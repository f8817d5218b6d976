package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
)

const (
	ContextUserID     = "userID"
	ContextSalonID    = "salonID"
	ContextUserRole   = "userRole"
	ContextCustomerID = "customerID"
)

func unauthorized(c *gin.Context, code string) {
	httperr.Unauthorized(c, code, "authentication required")
	c.Abort()
}

// AuthMiddleware validates the HMAC bearer token and stores its claims in
// the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing_authorization_header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid_authorization_header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "invalid_token_claims")
			return
		}

		userID, ok1 := claims["sub"].(float64)
		salonID, ok2 := claims["salonId"].(float64)
		role, _ := claims["role"].(string)
		if !ok1 || !ok2 || !knownRole(role) {
			unauthorized(c, "invalid_token_payload")
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextSalonID, uint(salonID))
		c.Set(ContextUserRole, role)
		if customerID, ok := claims["customerId"].(float64); ok && customerID > 0 {
			c.Set(ContextCustomerID, uint(customerID))
		}

		c.Next()
	}
}

func knownRole(role string) bool {
	switch role {
	case reservation.RoleOwner, reservation.RoleManager, reservation.RoleStaff, reservation.RoleCustomer:
		return true
	}
	return false
}

// RequireRoles rejects tokens whose role is not listed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Write(c, http.StatusForbidden, "forbidden_role", "this role cannot use this endpoint")
		c.Abort()
	}
}

// SalonID returns the salon the token is scoped to.
func SalonID(c *gin.Context) uint {
	return c.GetUint(ContextSalonID)
}

// Actor builds the reservation actor from the token claims.
func Actor(c *gin.Context) reservation.Actor {
	a := reservation.Actor{
		UserID: c.GetUint(ContextUserID),
		Role:   c.GetString(ContextUserRole),
	}
	if v, ok := c.Get(ContextCustomerID); ok {
		if id, ok := v.(uint); ok {
			a.CustomerID = &id
		}
	}
	return a
}
