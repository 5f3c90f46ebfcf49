package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"

	"github.com/dmarkhas/huddle/internal/config"
)

// ICEServersHandler hands clients the STUN/TURN list their peer
// connections should use. The coordinator itself never opens a media
// path; this is pure configuration for the browser side.
func ICEServersHandler(cfg *config.Config) gin.HandlerFunc {
	servers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		ice := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			ice.Username = s.Username
			ice.Credential = s.Credential
		}
		servers = append(servers, ice)
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, servers)
	}
}
