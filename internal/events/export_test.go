package events

// NewAMQPPublisherForTest builds a publisher over a fake channel.
func NewAMQPPublisherForTest(ch channel, queue string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, queue: queue}
}

type Channel = channel
