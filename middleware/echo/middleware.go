package echomw

import (
	"github.com/labstack/echo/v4"

	goalps "github.com/reoring/goalps"
	"github.com/reoring/goalps/middleware"
)

// Validate parses the request body as an ALPS document (encoding chosen by
// Content-Type) with opt, or DefaultParseOpt when opt is the zero value. The
// document is stored in the request context on success; failures are
// answered with the Issues payload.
func Validate(opt goalps.ParseOpt) echo.MiddlewareFunc {
	opt = middleware.OrDefault(opt)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			doc, err := middleware.ParseRequest(c.Request(), opt)
			if err != nil {
				iss, ok := goalps.AsIssues(err)
				if !ok {
					return c.JSON(middleware.StatusFor(err), map[string]any{"error": err.Error()})
				}
				return c.JSON(middleware.StatusFor(err), middleware.ErrorPayload(iss))
			}
			ctx := middleware.ContextWithDocument(c.Request().Context(), doc)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetDocument fetches the parsed document from echo.Context.
func GetDocument(c echo.Context) (*goalps.Document, bool) {
	return middleware.DocumentFromContext(c.Request().Context())
}

// Respond writes doc in the encoding negotiated from the Accept header.
func Respond(c echo.Context, doc *goalps.Document, opt goalps.WriteOpt) error {
	return middleware.Respond(c.Response(), c.Request(), doc, opt)
}
