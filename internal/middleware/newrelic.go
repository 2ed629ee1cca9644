package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes annotates the transaction started by nrgin with the
// session id and notices handler errors. It is a no-op without an agent.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if id := c.GetHeader(sessionHeader); id != "" {
			txn.AddAttribute("session_id", id)
		}

		c.Next()

		if id := c.Writer.Header().Get(requestIDHeader); id != "" {
			txn.AddAttribute("request_id", id)
		}
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
