package ginmw

import (
	"github.com/gin-gonic/gin"

	goalps "github.com/reoring/goalps"
	"github.com/reoring/goalps/middleware"
)

// Validate parses the request body as an ALPS document using opt (or
// DefaultParseOpt when zero value), stores it in the request context and on
// failure aborts with the Issues payload.
func Validate(opt goalps.ParseOpt) gin.HandlerFunc {
	opt = middleware.OrDefault(opt)
	return func(c *gin.Context) {
		doc, err := middleware.ParseRequest(c.Request, opt)
		if err != nil {
			if iss, ok := goalps.AsIssues(err); ok {
				c.AbortWithStatusJSON(middleware.StatusFor(err), middleware.ErrorPayload(iss))
				return
			}
			c.AbortWithStatusJSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDocument(c.Request.Context(), doc))
		c.Next()
	}
}

// GetDocument fetches the parsed document from gin.Context.
func GetDocument(c *gin.Context) (*goalps.Document, bool) {
	return middleware.DocumentFromContext(c.Request.Context())
}

// Respond writes doc in the encoding negotiated from the Accept header.
func Respond(c *gin.Context, doc *goalps.Document, opt goalps.WriteOpt) error {
	return middleware.Respond(c.Writer, c.Request, doc, opt)
}
