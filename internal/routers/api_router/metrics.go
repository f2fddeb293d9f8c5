package api_router

import (
	"strconv"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 协作同步指标
var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "map_annotation_operations_total",
		Help: "Processed mutation operations grouped by op kind and outcome.",
	}, []string{"op", "outcome"})

	batchSizeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "map_annotation_batch_size",
		Help:    "Number of operations per batch submit.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	roomBroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "map_annotation_room_broadcasts_total",
		Help: "Room broadcasts grouped by action.",
	}, []string{"action"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "map_annotation_http_requests_total",
		Help: "HTTP requests grouped by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "map_annotation_http_request_duration_seconds",
		Help:    "HTTP request latency grouped by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordOperationResult 累计单条操作的处理结果
func RecordOperationResult(r dto.OperationResult) {
	outcome := "success"
	switch {
	case r.Idempotent:
		outcome = "replay"
	case !r.Success:
		outcome = r.Error
	}
	op := r.Op
	if op == "" {
		op = "unknown"
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
}

// RecordBatchSize 累计批量提交的操作数
func RecordBatchSize(size int) {
	batchSizeHistogram.Observe(float64(size))
}

// RecordRoomBroadcast 累计房间广播
func RecordRoomBroadcast(action string) {
	roomBroadcastsTotal.WithLabelValues(action).Inc()
}

// RequestMetrics HTTP 请求计数与耗时采集
// 路由标签取注册模板（FullPath），避免按实际参数值发散
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler Prometheus 指标导出
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
