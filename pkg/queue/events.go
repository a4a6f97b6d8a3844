package queue

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ErrNoPublisher 未配置发布端.
var ErrNoPublisher = errors.New("queue: publisher not configured")

// Publish 把负载封装为信封并发布到 topic.
func Publish[T any](pub message.Publisher, topic string, payload T, opts ...HeaderOption) error {
	if pub == nil {
		return ErrNoPublisher
	}

	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// ParseFoodStatusChanged 解析状态迁移事件.
func ParseFoodStatusChanged(msg *message.Message) (Message[FoodStatusChangedPayload], error) {
	return ParseWatermillMessage[FoodStatusChangedPayload](msg)
}

// ParseFoodDeleted 解析食材删除事件.
func ParseFoodDeleted(msg *message.Message) (Message[FoodDeletedPayload], error) {
	return ParseWatermillMessage[FoodDeletedPayload](msg)
}
