package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
)

const userIDKey = "enw.userID"

// withUserID stores the authenticated user ID on the request context.
func withUserID(c *gin.Context, id uuid.UUID) {
	c.Set(userIDKey, id)
}

// userIDFrom fetches the authenticated user ID set by the auth middleware.
func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
