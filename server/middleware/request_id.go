package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

// requestIDKey ключ request ID в контексте gin
const requestIDKey = "request_id"

// RequestID добавляет уникальный request ID к каждому запросу.
// Переданный клиентом идентификатор сохраняется, отсутствующий генерируется.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set(requestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()
	}
}

// GetRequestID извлекает request ID из контекста gin
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
