package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
)

// WebhookPaths are the routes the identity provider may be pointed at.
var WebhookPaths = []string{"/", "/handle-new-user"}

// RegisterWebhookRoutes registers the auth-user webhook.
//
// POST /handle-new-user (also POST /)
// - 400 when the event is not INSERT or the payload has no user
// - 500 "Error: <message>" when the profile insert fails
// - 200 once the profile row is written
func RegisterWebhookRoutes(r gin.IRoutes, syncer *profilesync.Syncer) {
	h := func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.String(http.StatusBadRequest, profilesync.MsgInvalidJSON)
			return
		}

		res := syncer.SyncJSON(c.Request.Context(), body)
		if res.Err != nil {
			_ = c.Error(res.Err)
		}
		c.String(res.Status, res.Body)
	}

	for _, p := range WebhookPaths {
		r.POST(p, h)
	}
}
