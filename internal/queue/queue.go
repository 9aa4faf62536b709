package queue

import "context"

// MessageHandler processes one message from a queue. A non-nil error sends
// the message to the queue's dead-letter list.
type MessageHandler func(ctx context.Context, message []byte) error

// Broker is a message queue abstraction.
type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Close() error
}

const (
	QueueListGeneration    = "list-generation"
	QueueListGenerationDLQ = QueueListGeneration + dlqSuffix
)

const dlqSuffix = "-dlq"

// DLQName returns the dead-letter queue for the named queue.
func DLQName(queueName string) string {
	return queueName + dlqSuffix
}
