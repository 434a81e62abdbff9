package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/listener/internal/ports"
	"github.com/Gunvolt24/listener/pkg/httpx"
)

// StatusResponse - ответ /status.
type StatusResponse struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	Topic   string `json:"topic"`
	State   string `json:"state"`
}

type Handler struct {
	listener ports.Listener
	log      ports.Logger
}

func NewHandler(listener ports.Listener, log ports.Logger) *Handler {
	return &Handler{listener: listener, log: log}
}

// Options - что подключать к роутеру.
type Options struct {
	ServiceName string // имя сервиса для otelgin; пусто - без трассировки
	Metrics     bool   // отдавать /metrics
}

func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	if opts.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/status", h.status)

	return r
}

// status - состояние слушателя; 200 только пока он читает топик.
func (h *Handler) status(c *gin.Context) {
	resp := StatusResponse{
		ID:      h.listener.ID(),
		GroupID: h.listener.GroupID(),
		Topic:   h.listener.Topic(),
		State:   h.listener.State(),
	}

	code := http.StatusOK
	if resp.State != "running" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
