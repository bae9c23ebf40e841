package controllers

import (
	"log/slog"
	"net/http"

	"devmon/internal/middleware"
	"devmon/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local utility; origins are restricted by the CORS middleware.
		return true
	},
}

// HandleWebSocket handles incoming UI websocket connections
func HandleWebSocket(c *gin.Context) {
	// Extract and validate token from query parameter
	token := c.Query("token")
	if token == "" {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "missing token")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token: " + err.Error()})
		return
	}

	if middleware.GlobalSecurityLogger != nil {
		middleware.GlobalSecurityLogger.LogWebSocketConnected(c.ClientIP(), claims.ClientName)
	}

	// Upgrade connection to WebSocket
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("[WS] upgrade error", "err", err)
		return
	}

	clientID := c.ClientIP() + "-" + claims.ClientName
	client := &services.ClientConnection{
		ID:    clientID,
		Conn:  ws,
		Send:  make(chan services.WebSocketMessage, 256),
		Close: make(chan bool),
	}

	// Registering the first client starts the sampling loop.
	hub := services.GetWebSocketHub()
	hub.Register(client)

	go readPump(client, hub)
	go writePump(client)
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	client.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		var msg services.WebSocketMessage
		err := client.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("[WS] read error", "client", client.ID, "err", err)
			}
			return
		}

		switch msg.Type {
		case "auth":
			// Client re-sending an authentication token mid-session
			if msg.Token == "" {
				continue
			}
			claims, err := services.ValidateToken(msg.Token)
			if err != nil {
				if middleware.GlobalSecurityLogger != nil {
					middleware.GlobalSecurityLogger.LogFailedAuth(client.ID, "websocket auth message: "+err.Error())
				}
				select {
				case client.Send <- services.WebSocketMessage{
					Type: "auth_error",
					Data: map[string]interface{}{"error": "invalid token"},
				}:
				case <-client.Close:
					return
				}
				continue
			}
			select {
			case client.Send <- services.WebSocketMessage{
				Type: "auth_success",
				Data: map[string]interface{}{"client": claims.ClientName},
			}:
			case <-client.Close:
				return
			}

		case "ping":
			select {
			case client.Send <- services.WebSocketMessage{Type: "pong"}:
			case <-client.Close:
				return
			default:
				return
			}

		case "subscribe":
			// Already subscribed on connect
			slog.Debug("[WS] client subscribed", "client", client.ID)

		case "unsubscribe":
			// Client unsubscribing (will close connection)
			return

		default:
			slog.Debug("[WS] unknown message type", "type", msg.Type)
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection) {
	defer func() {
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				// Channel closed, close connection
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Warn("[WS] write error", "client", client.ID, "err", err)
				}
				return
			}

		case <-client.Close:
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// HandleGetToken generates a new JWT token for a UI client
func HandleGetToken(c *gin.Context) {
	clientName := c.DefaultQuery("client_name", "devmon-ui")

	validator := middleware.NewInputValidator()
	if !validator.ValidateClientName(clientName) {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid client name format")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client name format"})
		return
	}

	token, err := services.GenerateToken(clientName)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "token generation failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	if middleware.GlobalSecurityLogger != nil {
		middleware.GlobalSecurityLogger.LogTokenGenerated(c.ClientIP(), clientName)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"url":    "ws://" + c.Request.Host + "/ws?token=" + token,
		"expiry": services.GetTokenExpiry(),
		"client": clientName,
	})
}

// HandleTokenStatus checks the current token status
func HandleTokenStatus(c *gin.Context) {
	var token string

	// Prefer the Authorization header (Bearer token)
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	// Fallback to query parameter if header not found
	if token == "" {
		token = c.Query("token")
	}

	if token == "" {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "missing token in header or query")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required in Authorization header or query parameter"})
		return
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"client":     claims.ClientName,
		"expires_at": claims.ExpiresAt.Time,
		"issued_at":  claims.IssuedAt.Time,
	})
}
