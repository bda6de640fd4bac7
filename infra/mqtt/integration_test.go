//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/rulecheck/core/report"
	"github.com/kilianp07/rulecheck/internal/testutil"
)

func TestPublisherAgainstMosquitto(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	got := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("sub connect: %v", tok.Error())
	}
	defer sub.Disconnect(100)
	if tok := sub.Subscribe("it/summary", 1, func(_ paho.Client, m paho.Message) { got <- m.Payload() }); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	pub, err := NewPublisher(Config{Broker: broker, ClientID: "pub", Topic: "it", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Disconnect()

	control := make(chan string, 1)
	pub.OnControl(func(cmd string) { control <- cmd })

	if err := pub.RecordReport(report.Summary{Rules: 3, Failed: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	select {
	case payload := <-got:
		var s report.Summary
		if err := json.Unmarshal(payload, &s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if s.Rules != 3 || s.Failed != 1 {
			t.Fatalf("unexpected summary %+v", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("summary not received")
	}

	sub.Publish("it/control", 1, false, "revalidate").Wait()
	select {
	case cmd := <-control:
		if cmd != "revalidate" {
			t.Fatalf("unexpected command %q", cmd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("control command not received")
	}
}
