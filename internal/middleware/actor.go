package middleware

import "github.com/labstack/echo/v4"

const (
	// ActorHeader carries the operator identity resolved by the identity
	// collaborator in front of this service.
	ActorHeader = "X-Actor"

	actorContextKey = "actor"

	// DefaultActor stamps mutations that arrive without an operator identity.
	DefaultActor = "system"
)

// ActorMiddleware stores the current actor on the request context so ledger
// mutations can stamp who touched them.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := c.Request().Header.Get(ActorHeader)
			if actor == "" {
				actor = DefaultActor
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// GetActor returns the current actor from the request context
func GetActor(c echo.Context) string {
	if actor, ok := c.Get(actorContextKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
