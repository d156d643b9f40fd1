package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// fail resolves err through the error handler and writes the error
// envelope.
func (s *Server) fail(c *gin.Context, err error) {
	status, message := s.errs.Handle(c.Request.Context(), err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respond writes the success envelope: a human message plus the
// canonical entity under its own key.
func respond(c *gin.Context, status int, message, entityKey string, entity any) {
	body := gin.H{"message": message}
	if entityKey != "" {
		body[entityKey] = entity
	}
	c.JSON(status, body)
}

// ifMatchVersion reads the optional If-Match header carrying the
// version the caller last saw. Zero means no precondition.
func ifMatchVersion(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("If-Match")
	if raw == "" {
		return 0, true
	}

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 1 {
		return 0, false
	}

	return version, true
}

// pathID parses the numeric {id} path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}
