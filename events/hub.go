package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

const (
	TodoCreated = "task.created"
	TodoUpdated = "task.updated"
	TodoDeleted = "task.deleted"
	TodoCleared = "task.cleared"
)

// Event mô tả một thay đổi trên todos của một người dùng
type Event struct {
	Type    string       `json:"type"`
	OwnerID int64        `json:"-"`
	Todo    *models.Todo `json:"task,omitempty"`
	TodoID  int64        `json:"task_id,omitempty"`
	Count   int64        `json:"count,omitempty"`
}

type Publisher interface {
	Publish(ev Event)
}

// Multi gửi event tới tất cả publisher
type Multi []Publisher

func (m Multi) Publish(ev Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ev)
		}
	}
}

// Discard bỏ qua mọi event
var Discard Publisher = Multi(nil)

type session struct {
	ownerID int64
	events  chan Event
}

// Hub phát event tới các kết nối SSE đang mở, mỗi kết nối chỉ nhận event của chủ sở hữu nó
type Hub struct {
	mu        sync.Mutex
	sessions  []*session
	keepAlive time.Duration
	buffer    int
}

func NewHub() *Hub {
	return &Hub{keepAlive: 15 * time.Second, buffer: 16}
}

func (h *Hub) addSession(ownerID int64) *session {
	s := &session{ownerID: ownerID, events: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.sessions = append(h.sessions, s)
	h.mu.Unlock()
	return s
}

func (h *Hub) removeSession(s *session) {
	h.mu.Lock()
	idx := slices.Index(h.sessions, s)
	if idx != -1 {
		h.sessions[idx] = nil
		h.sessions = slices.Delete(h.sessions, idx, idx+1)
	}
	h.mu.Unlock()
}

// Sessions trả về số kết nối đang mở
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Publish không bao giờ chặn: kết nối chậm sẽ bị mất event
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sessions {
		if s.ownerID != ev.OwnerID {
			continue
		}
		select {
		case s.events <- ev:
		default:
			log.Warnf("dropping %s event for user %d: subscriber is slow", ev.Type, ev.OwnerID)
		}
	}
}

func formatSSEMessage(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	err := enc.Encode(data)
	if err != nil {
		return "", err
	}
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("event: %s\n", eventType))
	sb.WriteString(fmt.Sprintf("retry: %d\n", 15000))
	sb.WriteString(fmt.Sprintf("data: %s\n\n", strings.TrimSuffix(buf.String(), "\n")))

	return sb.String(), nil
}

// Stream mở một luồng SSE cho ownerID. Luồng kết thúc khi ghi thất bại hoặc server tắt.
func (h *Hub) Stream(c *fiber.Ctx, ownerID int64) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	s := h.addSession(ownerID)
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		keepAliveTickler := time.NewTicker(h.keepAlive)
		defer func() {
			keepAliveTickler.Stop()
			h.removeSession(s)
			log.Infof("closed event stream for user %d", ownerID)
		}()

		// báo cho client biết luồng đã sẵn sàng
		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case ev := <-s.events:
				sseMessage, err := formatSSEMessage(ev.Type, ev)
				if err != nil {
					log.Errorf("error formatting sse message: %v", err)
					continue
				}
				if _, err := w.WriteString(sseMessage); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepAliveTickler.C:
				fmt.Fprint(w, ":keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
