package skinHandler

import (
	"SkinLens/internal/api/skin"
	"SkinLens/internal/entity"
	"SkinLens/internal/middleware"
	contextPkg "SkinLens/pkg/context"
	"SkinLens/pkg/log"
	"SkinLens/pkg/skinmetric"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const (
	wsReadTimeout   = 60 * time.Second
	wsWriteTimeout  = 10 * time.Second
	wsMaxFrameBytes = 6 * 1024 * 1024

	clientIPKey = "client_ip"

	frameRateLimitedMessage = "too many frames, slow down"
)

// handleWebSocket answers every binary frame with a report, one frame at a
// time. Frame errors are reported to the client and the connection stays up.
func (h *SkinHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	clientIP, _ := c.Locals(clientIPKey).(string)
	user, _ := c.Locals("user").(entity.UserLoginData)
	fields := log.Fields{"request_id": requestID, "user_id": user.ID, "client_ip": clientIP}

	h.log.WithFields(fields).Info("Skin WebSocket client connected")
	defer h.log.WithFields(fields).Info("Skin WebSocket client disconnected")

	c.SetReadLimit(wsMaxFrameBytes)
	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(fields).Errorf("Skin WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.WithFields(fields).Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var payload interface{}
		if !h.middleware.AllowRequest(clientIP) {
			h.log.WithFields(fields).Warn("Skin frame rate limit exceeded")
			payload = skin.FrameErrorResponse{Error: frameRateLimitedMessage}
		} else if report, err := h.processFrame(requestID, message); err != nil {
			h.log.WithFields(fields).Warnf("Error processing skin frame: %v", err)
			payload = skin.FrameErrorResponse{Error: frameErrorMessage(err)}
		} else {
			payload = report
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(payload); err != nil {
			h.log.WithFields(fields).Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *SkinHandler) processFrame(requestID string, frame []byte) (skinmetric.Report, error) {
	c, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), requestTimeout)
	defer cancel()

	return h.skinService.ProcessFrame(c, frame)
}

func frameErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "frame processing timed out"
	case errors.Is(err, skin.ErrInvalidImage), errors.Is(err, skin.ErrDetectionFailed):
		return err.Error()
	default:
		return skin.ErrInternalServerError.Error()
	}
}
