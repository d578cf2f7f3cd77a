// Package influxdb records album catalog activity in InfluxDB.
//
// Two measurements are written:
//   - http_requests: method, route and status tags with a duration field
//   - catalog_events: one point per album or role change
//
// Writes are non-blocking and batched by the client library according to
// batch_size and flush_interval. Asynchronous write failures are delivered
// to the callback set with SetOnError.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteRequestMetric("GET", "/api/albums", 200, elapsed)
package influxdb
