package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	defaultImageSize = 300
	dataURIPrefix    = "data:image/png;base64,"
)

// ErrEmptyPayload 编码内容为空
var ErrEmptyPayload = errors.New("qrcode payload is empty")

// Encoder 二维码图片编码器
type Encoder interface {
	Encode(payload string) (string, error)
}

// PNGEncoder 输出 PNG data URI
type PNGEncoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// NewPNGEncoder 创建 PNG 编码器，size<=0 时使用默认边长
func NewPNGEncoder(size int) *PNGEncoder {
	if size <= 0 {
		size = defaultImageSize
	}
	return &PNGEncoder{size: size, level: goqrcode.Medium}
}

// Encode 将内容编码为 data:image/png;base64 字符串
func (e *PNGEncoder) Encode(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", ErrEmptyPayload
	}
	png, err := goqrcode.Encode(payload, e.level, e.size)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
