package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementHTTPRequests  = "http_requests"
	MeasurementCatalogEvents = "catalog_events"
)

// WriteRequestMetric records one handled HTTP request.
//
// route is the matched route pattern, not the raw path, to keep tag
// cardinality bounded.
func (c *Client) WriteRequestMetric(method, route string, status int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		MeasurementHTTPRequests,
		map[string]string{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000,
			"count":       1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCatalogEvent records a catalog change. The event type and the
// actor's role are tags; identifiers are fields.
func (c *Client) WriteCatalogEvent(eventType, role string, albumID, userID int64, at time.Time) {
	tags := map[string]string{"type": eventType}
	if role != "" {
		tags["role"] = role
	}

	fields := map[string]interface{}{"user_id": userID}
	if albumID != 0 {
		fields["album_id"] = albumID
	}

	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(MeasurementCatalogEvents, tags, fields, at))
}
