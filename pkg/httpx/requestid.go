package httpx

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/listener/pkg/ctxmeta"
)

// HeaderRequestID - заголовок корреляции запросов.
const HeaderRequestID = "X-Request-ID"

// допустимый внешний request id: до 128 символов из безопасного алфавита
var reRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestIDMiddleware:
// - принимает X-Request-ID от клиента (если он безопасен для логов) или генерирует UUID
// - кладёт request_id в контекст
// - возвращает его в ответном заголовке
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if !reRequestID.MatchString(requestID) {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := ctxmeta.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
