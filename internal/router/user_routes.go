package router

import (
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/handler"
	"github.com/adotai/adotai-backend/internal/middleware"
)

// RegisterUser registers endpoints open to any authenticated role:
// own-profile editing, conversations, the chat facade and reporting.
func RegisterUser(e *echo.Echo, p *handler.ProfileHandler, cv *handler.ConversationHandler, ch *handler.ChatHandler, rp *handler.ReportHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// ---- Own profile ----
	g.PUT("/profile", p.Update)
	g.PATCH("/profile", p.Update)
	g.POST("/profile/avatar", p.UploadAvatar)

	// ---- Conversations ----
	g.POST("/conversations", cv.Start)
	g.GET("/conversations", cv.List)
	g.GET("/conversations/:id", cv.Get)
	g.GET("/conversations/:id/messages", cv.ListMessages)
	g.POST("/conversations/:id/messages", cv.SendMessage)

	// ---- Chat facade ----
	g.GET("/chat/threads", ch.Threads)
	g.GET("/chat/threads/:id/messages", ch.ThreadMessages)
	g.POST("/chat/threads/:id/messages", ch.Send)

	// ---- Reports ----
	g.POST("/reports", rp.Create)
}
