// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 本地应用，前端与后端同源或localhost端口不同
		return true
	},
}

// WebSocketClient 表示一个 WebSocket 客户端连接
type WebSocketClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    int32 // 原子操作标志，0=开启，1=关闭
	lastPing  time.Time
	createdAt time.Time
}

// Close 安全关闭客户端连接
func (client *WebSocketClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		// 只设置关闭标志，send通道由写循环的defer负责关闭
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// IsExpired 检查连接是否超时
func (client *WebSocketClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(client.lastPing) > timeout
}

// WebSocketManager 管理所有预览事件订阅连接
//
// 预览事件是全局的：当前只有一个选中创意，所有已连接的
// 前端都收到同一份快照。
type WebSocketManager struct {
	clients       map[*WebSocketClient]bool
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	cleanup       chan bool
	mutex         sync.RWMutex
	pingTimeout   time.Duration
	cleanupTicker *time.Ticker
	log           logging.Logger
}

// NewWebSocketManager 创建并启动事件推送管理器
func NewWebSocketManager() *WebSocketManager {
	manager := &WebSocketManager{
		clients:     make(map[*WebSocketClient]bool),
		register:    make(chan *WebSocketClient, 64),
		unregister:  make(chan *WebSocketClient, 64),
		cleanup:     make(chan bool, 1),
		pingTimeout: 60 * time.Second,
		log:         logging.ForComponent("websocket"),
	}
	go manager.run()
	return manager
}

// run 运行管理器主循环
func (manager *WebSocketManager) run() {
	manager.cleanupTicker = time.NewTicker(30 * time.Second)
	defer manager.cleanupTicker.Stop()

	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)

		case client := <-manager.unregister:
			manager.unregisterClient(client)

		case <-manager.cleanupTicker.C:
			manager.cleanupExpiredConnections()

		case <-manager.cleanup:
			manager.shutdown()
			return
		}
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	manager.clients[client] = true
	client.lastPing = time.Now()

	manager.log.Infof("✅ WebSocket 客户端已连接（当前 %d 个）", len(manager.clients))
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	delete(manager.clients, client)
	if !client.IsClosed() {
		client.Close()
	}

	manager.log.Infof("🔌 WebSocket 客户端已断开（剩余 %d 个）", len(manager.clients))
}

// cleanupExpiredConnections 清理过期和死连接
func (manager *WebSocketManager) cleanupExpiredConnections() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for client := range manager.clients {
		if client.IsClosed() || client.IsExpired(manager.pingTimeout) {
			delete(manager.clients, client)
			if !client.IsClosed() {
				client.Close()
			}
		}
	}
}

// Broadcast 向所有在线客户端推送一条事件
func (manager *WebSocketManager) Broadcast(eventType string, data interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"type":      eventType,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		manager.log.Errorf("❌ 序列化推送消息失败: %v", err)
		return
	}

	manager.mutex.RLock()
	clients := make([]*WebSocketClient, 0, len(manager.clients))
	for client := range manager.clients {
		if !client.IsClosed() {
			clients = append(clients, client)
		}
	}
	manager.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// 队列满说明客户端已经不读了，直接关掉
			client.Close()
		}
	}
}

// NotifyPreview 推送预览就绪事件（实现 services.PreviewNotifier）
func (manager *WebSocketManager) NotifyPreview(snapshot models.SelectionSnapshot) {
	manager.Broadcast("preview_ready", snapshot)
}

// Shutdown 优雅关闭管理器
func (manager *WebSocketManager) Shutdown() {
	select {
	case manager.cleanup <- true:
	default:
	}
}

func (manager *WebSocketManager) shutdown() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for client := range manager.clients {
		client.Close()
	}
	manager.clients = make(map[*WebSocketClient]bool)

	manager.log.Infof("🛑 WebSocket 管理器已关闭")
}

// Status 获取管理器状态（健康检查用）
func (manager *WebSocketManager) Status() map[string]interface{} {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	active := 0
	for client := range manager.clients {
		if !client.IsClosed() {
			active++
		}
	}

	return map[string]interface{}{
		"connections": active,
	}
}

// HandleConnection 把HTTP请求升级为WebSocket并接入管理器
func (manager *WebSocketManager) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &WebSocketClient{
		conn:      conn,
		send:      make(chan []byte, 32),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	manager.register <- client

	go manager.writeLoop(client)
	go manager.readLoop(client)
	return nil
}

// writeLoop 把send通道里的消息写到连接，并定期发ping
func (manager *WebSocketManager) writeLoop(client *WebSocketClient) {
	pingTicker := time.NewTicker(manager.pingTimeout / 2)
	defer func() {
		pingTicker.Stop()
		client.Close()
	}()

	// send通道从不关闭，连接关闭后下一次写入报错退出循环
	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pingTicker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 消费客户端消息（订阅连接只收事件，读到的内容一律丢弃）
func (manager *WebSocketManager) readLoop(client *WebSocketClient) {
	defer func() {
		manager.unregister <- client
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(manager.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.lastPing = time.Now()
		client.conn.SetReadDeadline(time.Now().Add(manager.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.lastPing = time.Now()
	}
}
