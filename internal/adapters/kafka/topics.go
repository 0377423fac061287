package kafka

// Topic definitions for Kafka event streaming
const (
	// TopicPredictionCompleted carries every successful prediction
	TopicPredictionCompleted = "predictions.completed"
)
