package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

const (
	// HeaderRequestID передаётся клиентом или генерируется сервером.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "request_id"
	userKey      = "auth_user"
	tokenKey     = "auth_token"

	unmatchedRoute = "unmatched"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := requestEntry(c, logger).WithFields(log.Fields{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

func recordMetrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		m.RequestStarted()
		c.Next()
		m.RequestFinished(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

func recoverPanic(logger *log.Entry) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		requestEntry(c, logger).WithField("panic", recovered).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: msgInternal})
	}
}

// cors разрешает перечисленные origin; "*" разрешает любой. Origin отражается
// в ответе, потому что с credentials браузер не принимает "*".
func cors(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; allowAll || ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderRequestID)
				c.Header("Access-Control-Expose-Headers", HeaderRequestID)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Max-Age", "3600")
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireAuth пропускает запрос дальше только с валидным Bearer-токеном.
func requireAuth(identity IdentityGateway, logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgUnauthorized})
			return
		}

		user, err := identity.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusUnauthorized {
				requestEntry(c, logger).WithError(err).Debug("token rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgUnauthorized})
				return
			}
			requestEntry(c, logger).WithError(err).Error("token verification failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: msgAuthFailed, Error: err.Error()})
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// AuthenticatedUser возвращает пользователя, сохранённого requireAuth.
func AuthenticatedUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(userKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
