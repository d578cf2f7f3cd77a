// Package mqtt publishes album catalog events to an MQTT broker.
//
// The client is publish-only. Catalog changes are pushed to
// <prefix>/events/album/<type> and role changes to
// <prefix>/events/user/<id>/role, so downstream consumers can follow the
// catalog without polling the HTTP API. A retained status message on
// <prefix>/system/status, backed by a Last Will, reports whether the
// service is online.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().AlbumEvent("album.created")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
