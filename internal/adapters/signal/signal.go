package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/app"
	"github.com/dmarkhas/huddle/internal/config"
	"github.com/dmarkhas/huddle/internal/core"
	"github.com/dmarkhas/huddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type WSController struct {
	Coord   *app.Coordinator
	Cfg     *config.Config
	limiter *JoinLimiter
}

func NewWSController(coord *app.Coordinator, cfg *config.Config) *WSController {
	return &WSController{
		Coord:   coord,
		Cfg:     cfg,
		limiter: NewJoinLimiter(cfg.JoinLimit, cfg.JoinWindow),
	}
}

// wsConn wraps one gorilla connection with a non-blocking outbound queue.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection's session
// until the transport drops.
func (ctl *WSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	pid := domain.NewParticipantID()
	log.Info().Str("module", "signal").Str("pid", string(pid)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ctl.Coord.Connect(pid, conn)

	// Queued before the pumps start so the client always sees its own
	// identifier first.
	ctl.sendJSON(conn, struct {
		Type string               `json:"type"`
		ID   domain.ParticipantID `json:"id"`
	}{"welcome", pid})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, pid, conn)
	go ctl.readPump(ctx, cancel, pid, conn)
}
