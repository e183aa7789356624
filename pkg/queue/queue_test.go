package queue_test

import (
	"testing"

	"github.com/yeisme/uplink/pkg/queue"
)

// TestWatermillMessageRoundTrip 测试消息构造与解析往返.
func TestWatermillMessageRoundTrip(t *testing.T) {
	payload := queue.FileSubmittedPayload{
		File: queue.FileRef{
			UID:       "uid-123",
			ProjectID: 7,
			State:     "ready_for_check",
		},
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFileSubmitted, payload,
		queue.WithTraceID("trace-xyz"),
		queue.WithProducer("uplink"),
	)
	if err != nil {
		t.Fatalf("NewWatermillMessage failed: %v", err)
	}

	if msg.UUID == "" {
		t.Error("Expected non-empty message UUID")
	}

	if got := msg.Metadata.Get("topic"); got != queue.TopicFileSubmitted {
		t.Errorf("Expected topic metadata %q, got %q", queue.TopicFileSubmitted, got)
	}

	if got := msg.Metadata.Get("trace_id"); got != "trace-xyz" {
		t.Errorf("Expected trace_id metadata, got %q", got)
	}

	env, err := queue.ParseFileSubmitted(msg)
	if err != nil {
		t.Fatalf("ParseFileSubmitted failed: %v", err)
	}

	if env.Header.Topic != queue.TopicFileSubmitted {
		t.Errorf("Expected header topic %q, got %q", queue.TopicFileSubmitted, env.Header.Topic)
	}

	if env.Header.Version != queue.PayloadVersionV1 {
		t.Errorf("Expected version %q, got %q", queue.PayloadVersionV1, env.Header.Version)
	}

	if env.Header.OccurredAt.IsZero() {
		t.Error("Expected non-zero occurred_at")
	}

	if env.Payload.File.UID != "uid-123" || env.Payload.File.ProjectID != 7 {
		t.Errorf("Payload mismatch: %+v", env.Payload)
	}
}

// TestMessageDecodeIgnoresUnknownFields 测试消费端对未知字段的兼容.
func TestMessageDecodeIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"header": {"topic": "ul.file.uploaded", "version": "v2", "future_field": true},
		"payload": {"file": {"uid": "u-1", "project_id": 3, "state": "preload"}, "object_name": "01j.pdf", "extra": 1}
	}`)

	env, err := queue.Decode[queue.FileUploadedPayload](raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if env.Payload.File.UID != "u-1" || env.Payload.ObjectName != "01j.pdf" {
		t.Errorf("Payload mismatch: %+v", env.Payload)
	}
}
