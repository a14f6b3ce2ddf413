package kafka

// MessageWriter exposes the writer seam to external tests.
type MessageWriter = messageWriter

func NewPublisherWithWriter(w MessageWriter, c Config) *Publisher {
	return newPublisher(w, c)
}
