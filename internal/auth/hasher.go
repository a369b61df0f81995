package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher - одностороннее хеширование паролей.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// BcryptHasher - реализация PasswordHasher на bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher создаёт хешер со стоимостью по умолчанию.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	return string(hash), err
}

func (h *BcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const pinAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePIN возвращает случайный буквенно-цифровой код заданной длины.
func GeneratePIN(length int) (string, error) {
	pin := make([]byte, length)
	bound := big.NewInt(int64(len(pinAlphabet)))
	for i := range pin {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", err
		}
		pin[i] = pinAlphabet[n.Int64()]
	}
	return string(pin), nil
}
