package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Auth проверяет учетные данные администратора и выдает JWT для доступа
// к CRUD-маршрутам. Логин и пароль задаются переменными окружения
// ADMIN_USERNAME и ADMIN_PASSWORD.
type Auth struct {
	username string
	password string
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
}

// NewAuth создает проверку доступа администратора.
func NewAuth(username, password string, secret []byte, log *zap.Logger) *Auth {
	return &Auth{
		username: username,
		password: password,
		secret:   secret,
		ttl:      time.Hour,
		log:      log,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login обрабатывает POST /api/login: при верных учетных данных возвращает токен.
func (a *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "требуются username и password"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.password)) == 1
	if !userOK || !passOK {
		a.log.Warn("неудачная попытка входа", zap.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "неверные учетные данные"})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выдать токен"})
		return
	}

	a.log.Info("администратор вошел", zap.String("username", req.Username))
	c.JSON(http.StatusOK, gin.H{"token": signed})
}

// Middleware закрывает группу маршрутов: пускает только запросы
// с валидным Bearer-токеном.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}
		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен недействителен"})
			return
		}
		c.Next()
	}
}
