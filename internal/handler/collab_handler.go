package handler

import (
	"os"

	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CollabHandler upgrades authenticated connections into hub clients. The
// JWT handshake happens before the upgrade; joining a specific document
// room is a separate, per-room authorization step inside the hub.
type CollabHandler struct {
	hub    *collab.Hub
	logger logger.ILogger
}

func NewCollabHandler(hub *collab.Hub, log logger.ILogger) *CollabHandler {
	return &CollabHandler{hub: hub, logger: log}
}

func (h *CollabHandler) ServeWs(c *fiber.Ctx) error {
	// Token via query param (browser) or bearer header (tooling).
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("CollabHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user id in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("CollabHandler", "Starting collaboration session", map[string]interface{}{"user_id": userID})
			collab.ServeWs(h.hub, conn, userID)
			h.logger.Info("CollabHandler", "Collaboration session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *CollabHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
