package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	"github.com/AzielCF/az-laundry/infrastructure/valkey"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	CodeQueueChanged   = "QUEUE_CHANGED"
	CodeQueueStatus    = "QUEUE_STATUS"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeFetchQueue     = "FETCH_QUEUE"
)

type client struct{}

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Result   any    `json:"result"`
	SenderID string `json:"sender_id,omitempty"`
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan *websocket.Conn)
	Broadcast  = make(chan BroadcastMessage, 64)
	Unregister = make(chan *websocket.Conn)

	vkClient *valkey.Client
	wsChan   = "azlaundry:ws_broadcast"
	localID  string
)

// SetValkeyClient fans events out to every client process sharing the
// same Valkey, so all open admin tabs see queue changes.
func SetValkeyClient(client *valkey.Client, serverID string) {
	vkClient = client
	localID = serverID
	if client != nil {
		wsChan = client.Key("ws_broadcast")
	}
}

// Publish hands a message to the hub without blocking the caller. Messages
// are dropped when the hub is not keeping up.
func Publish(message BroadcastMessage) {
	select {
	case Broadcast <- message:
	default:
		logrus.Warnf("[WS] broadcast buffer full, dropping %s", message.Code)
	}
}

// QueueChanged reports the new pending count of the offline queue.
func QueueChanged(pending int) {
	Publish(BroadcastMessage{
		Code:    CodeQueueChanged,
		Message: "Offline queue changed",
		Result:  map[string]int{"pending": pending},
	})
}

// SessionExpired tells the UI to go to the login page.
func SessionExpired(loginPath string) {
	Publish(BroadcastMessage{
		Code:    CodeSessionExpired,
		Message: "Session expired, please log in again",
		Result:  map[string]string{"redirect": loginPath},
	})
}

func handleRegister(conn *websocket.Conn) {
	Clients[conn] = client{}
	logrus.Debug("[WS] Connection registered")
}

func handleUnregister(conn *websocket.Conn) {
	delete(Clients, conn)
	logrus.Debug("[WS] Connection unregistered")
}

func broadcastToLocal(message BroadcastMessage) {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn := range Clients {
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			closeConnection(conn)
		}
	}
}

func publishToValkey(message BroadcastMessage) {
	if vkClient == nil {
		return
	}

	message.SenderID = localID

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	ctx := context.Background()
	cmd := vkClient.Inner().B().Publish().Channel(wsChan).Message(string(data)).Build()
	if err := vkClient.Inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func startValkeySubscriber(ctx context.Context) {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber")
	go func() {
		err := vkClient.Inner().Receive(ctx, vkClient.Inner().B().Subscribe().Channel(wsChan).Build(), func(msg valkeylib.PubSubMessage) {
			var broadcastMsg BroadcastMessage
			if err := json.Unmarshal([]byte(msg.Message), &broadcastMsg); err == nil {
				if broadcastMsg.SenderID == localID {
					return
				}
				broadcastToLocal(broadcastMsg)
			}
		})
		if err != nil && ctx.Err() == nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(Clients, conn)
}

// RunHub owns the client set until ctx is done.
func RunHub(ctx context.Context) {
	if vkClient != nil {
		startValkeySubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for conn := range Clients {
				closeConnection(conn)
			}
			return

		case conn := <-Register:
			handleRegister(conn)

		case conn := <-Unregister:
			handleUnregister(conn)

		case message := <-Broadcast:
			broadcastToLocal(message)
			if vkClient != nil {
				publishToValkey(message)
			}
		}
	}
}

func RegisterRoutes(app fiber.Router, queue domainQueue.IOfflineQueue) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			Unregister <- conn
			_ = conn.Close()
		}()

		Register <- conn

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Warnf("[WS] read error: %v", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				logrus.Debugf("[WS] unsupported message type: %d", messageType)
				continue
			}

			var messageData BroadcastMessage
			if err := json.Unmarshal(message, &messageData); err != nil {
				logrus.Warnf("[WS] unmarshal error: %v", err)
				return
			}

			if messageData.Code == CodeFetchQueue {
				list, err := queue.List(context.Background())
				if err != nil {
					logrus.WithError(err).Error("[WS] failed to list offline queue")
					continue
				}
				Publish(BroadcastMessage{
					Code:    CodeQueueStatus,
					Message: "Offline queue status",
					Result:  map[string]any{"pending": len(list), "items": list},
				})
			}
		}
	}))
}
