package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged at warn level. It implements all hook interfaces, so one value can
// be registered for every category.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "took", d.Round(time.Microsecond))
	if err != nil {
		h.logger.Warn(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	h.done("load", d, err, "source", source, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.logger.Debug("layout", "engine", engine, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	h.done("layout", d, err, "engine", engine)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	lvl := log.DebugLevel
	if status >= 500 {
		lvl = log.WarnLevel
	}
	h.logger.Log(lvl, "request", "method", method, "route", route, "status", status, "took", d.Round(time.Microsecond))
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
