package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

var marshaler = cqrs.JSONMarshaler{GenerateName: cqrs.StructName}

// NewRedisPublisher builds a Redis stream publisher on the shared client.
func NewRedisPublisher(redisClient *redis.Client, logger watermill.LoggerAdapter) (*redisstream.Publisher, error) {
	return redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, logger)
}

// NewRedisSubscriber builds a consumer-group subscriber on the shared client.
func NewRedisSubscriber(redisClient *redis.Client, consumerGroup string, logger watermill.LoggerAdapter) (*redisstream.Subscriber, error) {
	return redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: consumerGroup,
	}, logger)
}

// NewEventBus publishes events on topics named after the event type.
func NewEventBus(pub message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: marshaler,
		Logger:    logger,
	})
}

// NewEventProcessor routes subscribed events to their registered handlers.
func NewEventProcessor(router *message.Router, redisClient *redis.Client, consumerGroup string, logger watermill.LoggerAdapter) (*cqrs.EventProcessor, error) {
	return cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return NewRedisSubscriber(redisClient, consumerGroup, logger)
		},
		Marshaler: marshaler,
		Logger:    logger,
	})
}
