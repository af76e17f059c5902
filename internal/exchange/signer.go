package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signer 按交易所要求对已编码的查询串做 HMAC-SHA256 签名。
type signer struct {
	secret []byte
}

func newSigner(secret string) *signer {
	return &signer{secret: []byte(secret)}
}

// Sign 返回查询串的十六进制签名。
// 入参必须是最终发送的 urlencode 结果，签名对字节序敏感。
func (s *signer) Sign(query string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
