package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evroute/core/notify"
	"github.com/kilianp07/evroute/internal/testutil"
)

// TestIntegration publishes a plan through a real Mosquitto broker.
func TestIntegration(t *testing.T) {
	testutil.RequireDocker(t)
	ctx := context.Background()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Fatalf("start broker: %v", err)
	}
	defer cleanup()

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	if token := sub.Subscribe(DefaultTopic+"/#", 1, func(_ paho.Client, m paho.Message) {
		received <- m.Payload()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	pub, err := NewPlanPublisher(Config{Broker: broker, ClientID: "evroute-it", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer func() { _ = pub.Close() }()

	if err := pub.Publish(ctx, notify.PlanMessage{PlanID: "it-1", Vehicle: "MG ZS EV", EnergyKWh: 22.4}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case payload := <-received:
		var msg notify.PlanMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.PlanID != "it-1" || msg.Vehicle != "MG ZS EV" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
