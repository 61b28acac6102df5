package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/infra/auth"
)

// JWTAuthMiddleware достаёт токен из заголовка x-access-token или из
// query-параметра token (так аутентифицируется WebSocket upgrade) и
// кладёт id пользователя в контекст запроса. Без валидного токена
// запрос отклоняется до апгрейда - анонимных сессий не бывает.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := c.Request().Header.Get("x-access-token")
			if tokenString == "" {
				tokenString = c.QueryParam("token")
			}

			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing token"})
			}

			userID, err := auth.ParseToken([]byte(secret), tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithUserID(c.Request().Context(), userID),
				),
			)

			return next(c)
		}
	}
}
