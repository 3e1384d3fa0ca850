package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignatureVerifier проверяет подпись уведомлений шлюза
// Подпись: hex(SHA-512(order_id + status_code + gross_amount + serverKey))
type SignatureVerifier struct {
	serverKey string
}

// NewSignatureVerifier создает верификатор с ключом сервера
func NewSignatureVerifier(serverKey string) *SignatureVerifier {
	return &SignatureVerifier{serverKey: serverKey}
}

// Sign вычисляет ожидаемую подпись
func (v *SignatureVerifier) Sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + v.serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify сравнивает подпись за постоянное время
// Пустая подпись всегда отклоняется
func (v *SignatureVerifier) Verify(orderID, statusCode, grossAmount, signature string) error {
	if signature == "" {
		return ErrInvalidSignature
	}

	expected := v.Sign(orderID, statusCode, grossAmount)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) != 1 {
		return ErrInvalidSignature
	}

	return nil
}
