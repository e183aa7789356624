// Package token 实现上传授权令牌的编解码.
//
// 令牌是 URL 安全 base64 包裹的 JSON 对象，自描述地携带重新定位一条
// 待上传记录所需的全部字段；不含签名，不可伪造性依赖其中 ut 字段的熵
// （见 model.NewFile）。需要防篡改检测时可在外层追加 HMAC，线上格式不变.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/yeisme/uplink/pkg/internal/model"
)

// ErrMalformedToken base64 或结构解码失败.
var ErrMalformedToken = errors.New("malformed upload token")

// Payload 令牌载荷，字段名即线上 JSON 格式，不可改动.
type Payload struct {
	UploadToken string `json:"ut"`
	EntityName  string `json:"entityName"`
	UserUID     string `json:"userUid"`
	Action      string `json:"action"`
	EntityUID   string `json:"entityUid"`
	Time        int64  `json:"time"`
}

// Encode 把文件记录编码为上传令牌.
func Encode(f *model.File) (string, error) {
	p := Payload{
		UploadToken: f.UploadToken,
		EntityName:  f.EntityName,
		UserUID:     f.UserUID,
		Action:      f.Action,
		EntityUID:   f.EntityUID,
		Time:        f.Meta.LastModified,
	}

	raw, err := sonic.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode 解析上传令牌，失败统一返回 ErrMalformedToken.
func Decode(s string) (Payload, error) {
	var p Payload

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		// 兼容带 padding 的标准编码
		raw, err = base64.StdEncoding.DecodeString(s)
		if err != nil {
			return p, fmt.Errorf("%w: %s", ErrMalformedToken, "invalid base64")
		}
	}

	if err := sonic.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %s", ErrMalformedToken, "invalid payload")
	}

	if p.UploadToken == "" {
		return p, fmt.Errorf("%w: %s", ErrMalformedToken, "missing ut")
	}

	return p, nil
}
