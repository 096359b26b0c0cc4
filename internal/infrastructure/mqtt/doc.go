// Package mqtt connects the exporter to an MQTT broker.
//
// The exporter uses MQTT for two things:
//   - Receiving on-demand export commands published to
//     integrationexporter/command/<name> (e.g. by a Home Assistant automation
//     or Node-RED flow).
//   - Publishing a retained status message after every export, plus an
//     online/offline presence message guarded by a Last Will.
//
// The client reconnects automatically with exponential backoff and restores
// its subscriptions after each reconnect.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return services.Call(ctx, entry.Domain, mqtt.CommandName(topic))
//	    })
package mqtt
