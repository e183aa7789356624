// Package mq 提供进程内 GoChannel 消息队列实现.
// 单机部署或本地开发时无需外部 broker，事件仍然走统一的发布路径.
package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/uplink/pkg/configs"
)

// init 注册 GoChannel 工厂.
func init() {
	RegisterFactory(configs.MQTypeChannel, channelFactory)
}

// channelFactory 创建进程内 Publisher & Subscriber，两者共享同一个 pubsub.
func channelFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.Common.BufferSize),
		Persistent:          false,
	}, logger)

	return ps, ps, nil
}
