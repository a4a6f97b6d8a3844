// Package queue 定义业务事件的信封与负载，通过 watermill 发布到消息队列.
//
// 信封 JSON 结构:
//
//	{
//	  "header": {
//	    "topic": "xs.food.deleted",
//	    "trace_id": "optional-trace-id",
//	    "producer": "xianshiji",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { "item": { "id": 7, "user_id": 1, ... }, "reason": "zero_quantity" }
//	}
//
// 发布与消费:
//
//	err := queue.Publish(pub, queue.TopicFoodAdded, queue.FoodAddedPayload{Item: ref},
//	    queue.WithProducer("xianshiji"))
//
//	for m := range ch {
//	    env, _ := queue.ParseFoodStatusChanged(m)
//	    m.Ack()
//	}
//
// 头部字段同时写入 watermill metadata，便于不解码负载就能路由或过滤.
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前负载版本.
const PayloadVersionV1 = "v1"

// HeaderOption 修改事件头.
type HeaderOption func(*EventHeader)

// WithTraceID 设置 TraceID.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 创建事件头，发生时间取当前 UTC.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	hdr := EventHeader{Topic: topic, OccurredAt: time.Now().UTC(), Version: PayloadVersionV1}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// metadata 非空头部字段.
func (h EventHeader) metadata() map[string]string {
	md := map[string]string{
		"topic":       h.Topic,
		"trace_id":    h.TraceID,
		"producer":    h.Producer,
		"occurred_at": h.OccurredAt.Format(time.RFC3339Nano),
		"version":     h.Version,
	}

	for k, v := range md {
		if v == "" {
			delete(md, k)
		}
	}

	return md
}

// NewWatermillMessage 封装信封并生成带元数据的 watermill 消息.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	env := Message[T]{Header: NewEventHeader(topic, opts...), Payload: payload}

	data, err := sonic.Marshal(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	for k, v := range env.Header.metadata() {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型信封.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(msg.Payload, &m)

	return m, err
}
