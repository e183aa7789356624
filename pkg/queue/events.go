package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// -------------------------- 基于业务封装 events --------------------------

// Publisher 发布端的最小接口，mq.Client 满足该接口.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...*message.Message) error
}

// PublishFileLinkIssued 发布 ul.file.link.issued 事件.
// 在批量签发上传链接成功后调用，每条新建记录一个事件.
func PublishFileLinkIssued(ctx context.Context, pub Publisher, payload FileLinkIssuedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileLinkIssued, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicFileLinkIssued, msg)
}

// PublishFileUploaded 发布 ul.file.uploaded 事件.
// 字节流落盘且记录进入 preload 后调用.
func PublishFileUploaded(ctx context.Context, pub Publisher, payload FileUploadedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileUploaded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicFileUploaded, msg)
}

// PublishFileSubmitted 发布 ul.file.submitted 事件，下游审核流程的触发点.
func PublishFileSubmitted(ctx context.Context, pub Publisher, payload FileSubmittedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileSubmitted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicFileSubmitted, msg)
}

// PublishFileAccessed 发布 ul.file.accessed 事件.
func PublishFileAccessed(ctx context.Context, pub Publisher, payload FileAccessedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileAccessed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicFileAccessed, msg)
}

// PublishFileStaleLoading 发布 ul.file.stale.loading 巡检事件.
func PublishFileStaleLoading(ctx context.Context, pub Publisher, payload FileStaleLoadingPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileStaleLoading, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicFileStaleLoading, msg)
}

// ParseFileSubmitted 将 Watermill 消息解析为强类型 Envelope（FileSubmittedPayload）.
func ParseFileSubmitted(msg *message.Message) (Message[FileSubmittedPayload], error) {
	return ParseWatermillMessage[FileSubmittedPayload](msg)
}

// ParseFileUploaded 将 Watermill 消息解析为强类型 Envelope（FileUploadedPayload）.
func ParseFileUploaded(msg *message.Message) (Message[FileUploadedPayload], error) {
	return ParseWatermillMessage[FileUploadedPayload](msg)
}
