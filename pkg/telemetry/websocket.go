package telemetry

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// DefaultClientBuffer is the number of samples queued per websocket client.
const DefaultClientBuffer = 64

// WebsocketHub streams encoded samples to websocket clients. A slow client
// loses its oldest queued samples rather than blocking the logger.
type WebsocketHub struct {
	Addr         string
	Path         string
	Device       string
	ClientBuffer int

	seq     atomic.Uint64
	lock    sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	ch   chan []byte
}

// NewWebsocketHub creates a hub serving at addr.
func NewWebsocketHub(addr, device string) *WebsocketHub {
	return &WebsocketHub{Addr: addr, Path: "/samples", Device: device, ClientBuffer: DefaultClientBuffer}
}

// Name implements framework.Named.
func (h *WebsocketHub) Name() string {
	return "websocket"
}

// Handler returns the websocket handler.
func (h *WebsocketHub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Run implements framework.Runnable.
func (h *WebsocketHub) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(h.Path, h.Handler())
	srv := &http.Server{Addr: h.Addr, Handler: mux}
	glog.Infof("websocket: serving %s%s", h.Addr, h.Path)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

// Clients returns the number of connected clients.
func (h *WebsocketHub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// WriteSample implements pipeline.Sink.
func (h *WebsocketHub) WriteSample(msg *sensor.Message) error {
	data, err := EncodeSample(SampleFrom(h.Device, h.seq.Add(1), msg))
	if err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- data:
			continue
		default:
		}
		select {
		case <-c.ch:
		default:
		}
		select {
		case c.ch <- data:
		default:
		}
	}
	return nil
}

func (h *WebsocketHub) serve(conn *websocket.Conn) {
	size := h.ClientBuffer
	if size <= 0 {
		size = DefaultClientBuffer
	}
	c := &wsClient{conn: conn, ch: make(chan []byte, size)}
	h.lock.Lock()
	if h.clients == nil {
		h.clients = make(map[*wsClient]struct{})
	}
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	glog.V(2).Infof("websocket: client %s connected", conn.Request().RemoteAddr)

	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
		conn.Close()
		glog.V(2).Infof("websocket: client %s disconnected", conn.Request().RemoteAddr)
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
	}()
	for {
		select {
		case <-closed:
			return
		case data := <-c.ch:
			if err := websocket.Message.Send(conn, data); err != nil {
				return
			}
		}
	}
}
