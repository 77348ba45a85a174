package queue

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

func TestFanInClosesWhenAllLanesClose(t *testing.T) {
	high := make(chan amqp.Delivery)
	low := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)

	out := fanIn(done, high, low)

	go func() {
		high <- amqp.Delivery{ConsumerTag: "first"}
		// a broker connection loss closes every lane channel
		close(high)
		close(low)
	}()

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case d, ok := <-out:
			if !ok {
				require.Equal(t, []string{"first"}, got)
				return
			}
			got = append(got, d.ConsumerTag)
		case <-timeout:
			t.Fatal("merged channel did not close after all lanes closed")
		}
	}
}

func TestFanInStopsOnDone(t *testing.T) {
	in := make(chan amqp.Delivery)
	done := make(chan struct{})

	out := fanIn(done, in)

	// the forwarder takes the delivery and blocks sending it with no reader
	in <- amqp.Delivery{}
	close(done)

	// input stays open; the merged channel must still close so nothing leaks
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("merged channel did not close after done")
		}
	}
}
