package token_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/token"
)

// newTestFile 创建一条测试记录.
func newTestFile(t *testing.T) *model.File {
	t.Helper()

	f, err := model.NewFile(7, "report", "user-9", "replace", "report-3", "cafebabe", model.FileMeta{
		FileName:     "q3.xlsx",
		FileExt:      "xlsx",
		LastModified: 1700000000,
	})
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	return f
}

// TestEncodeDecodeRoundTrip 测试令牌编解码往返.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := newTestFile(t)

	s, err := token.Encode(f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	p, err := token.Decode(s)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if p.UploadToken != f.UploadToken {
		t.Errorf("Expected upload token %q, got %q", f.UploadToken, p.UploadToken)
	}

	if p.EntityName != f.EntityName || p.EntityUID != f.EntityUID {
		t.Errorf("Entity fields mismatch: got %q/%q", p.EntityName, p.EntityUID)
	}

	if p.UserUID != f.UserUID || p.Action != f.Action {
		t.Errorf("User/action mismatch: got %q/%q", p.UserUID, p.Action)
	}

	if p.Time != f.Meta.LastModified {
		t.Errorf("Expected time %d, got %d", f.Meta.LastModified, p.Time)
	}
}

// TestDecodeAcceptsStdEncoding 测试带 padding 的标准 base64 也能解析.
func TestDecodeAcceptsStdEncoding(t *testing.T) {
	f := newTestFile(t)

	s, err := token.Encode(f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("decode fixture failed: %v", err)
	}

	padded := base64.StdEncoding.EncodeToString(raw)

	p, err := token.Decode(padded)
	if err != nil {
		t.Fatalf("Decode failed for std encoding: %v", err)
	}

	if p.UploadToken != f.UploadToken {
		t.Errorf("Expected upload token %q, got %q", f.UploadToken, p.UploadToken)
	}
}

// TestDecodeMalformed 测试各种畸形输入统一返回 ErrMalformedToken.
func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"base64 but not json", base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{"json without ut", base64.RawURLEncoding.EncodeToString([]byte(`{"entityName":"order"}`))},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := token.Decode(tc.input); !errors.Is(err, token.ErrMalformedToken) {
				t.Errorf("Expected ErrMalformedToken, got %v", err)
			}
		})
	}
}
