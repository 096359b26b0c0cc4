//go:build integration

package mqtt

import (
	"testing"
	"time"
)

// These tests require a running MQTT broker at 127.0.0.1:1883.
//
//	go test -tags=integration -count=1 ./internal/infrastructure/mqtt/...

func TestIntegration_CommandRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "integration-exporter-int-cmd"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan string, 1)
	err = client.Subscribe(Topics{}.AllCommands(), 1, func(topic string, _ []byte) error {
		received <- CommandName(topic)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(Topics{}.AllCommands()) {
		t.Error("HasSubscription() = false after Subscribe")
	}

	if err := client.Publish(Topics{}.Command("export_integrations"), []byte("{}"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case name := <-received:
		if name != "export_integrations" {
			t.Errorf("command = %q, want export_integrations", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command was not delivered")
	}
}

func TestIntegration_RetainedStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "integration-exporter-int-pub"

	pub, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer pub.Close()

	if err := pub.PublishRetained(Topics{}.ReportStatus(), []byte(`{"status":"success"}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}

	cfg.Broker.ClientID = "integration-exporter-int-sub"
	sub, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer sub.Close()

	received := make(chan []byte, 1)
	err = sub.Subscribe(Topics{}.ReportStatus(), 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"status":"success"}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retained status was not delivered")
	}
}
