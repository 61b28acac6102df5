package rtc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMalformedToken = errors.New("malformed rtc token")
	ErrBadSignature   = errors.New("rtc token signature mismatch")
	ErrTokenExpired   = errors.New("rtc token expired")
)

// TokenBuilder выписывает временные токены каналов для внешнего
// голосового провайдера. Сервер не гоняет медиа сам - только подписывает
// доступ к каналу, остальное делает SDK на клиенте.
type TokenBuilder struct {
	appID  string
	secret []byte
	ttl    time.Duration

	// now подменяется в тестах
	now func() time.Time
}

func NewTokenBuilder(appID, secret string) *TokenBuilder {
	return &TokenBuilder{
		appID:  appID,
		secret: []byte(secret),
		ttl:    time.Hour,
		now:    time.Now,
	}
}

// Build собирает токен вида appID:channel:userID:expiry:signature,
// где подпись - HMAC-SHA256 от первых четырёх полей.
func (b *TokenBuilder) Build(channelName string, userID uuid.UUID) string {
	expiry := b.now().Add(b.ttl).Unix()

	payload := fmt.Sprintf("%s:%s:%s:%d", b.appID, channelName, userID, expiry)

	return payload + ":" + b.sign(payload)
}

// Verify проверяет подпись и срок действия токена
func (b *TokenBuilder) Verify(token string) error {
	idx := strings.LastIndex(token, ":")
	if idx < 0 {
		return ErrMalformedToken
	}

	payload, signature := token[:idx], token[idx+1:]

	if !hmac.Equal([]byte(signature), []byte(b.sign(payload))) {
		return ErrBadSignature
	}

	parts := strings.Split(payload, ":")
	if len(parts) != 4 {
		return ErrMalformedToken
	}

	expiry, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return ErrMalformedToken
	}

	if b.now().Unix() > expiry {
		return ErrTokenExpired
	}

	return nil
}

func (b *TokenBuilder) sign(payload string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(payload))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
