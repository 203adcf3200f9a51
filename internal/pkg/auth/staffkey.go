package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidStaffKey = errors.New("invalid staff key")

// StaffKeyChecker verifies the staff API key presented on manual override
// endpoints. Only the bcrypt hash of the key is held in configuration.
type StaffKeyChecker struct {
	hash []byte
}

// NewStaffKeyChecker builds a checker around the stored key hash.
func NewStaffKeyChecker(hash string) *StaffKeyChecker {
	return &StaffKeyChecker{hash: []byte(hash)}
}

// Check compares the presented key against the stored hash.
func (c *StaffKeyChecker) Check(key string) error {
	if len(c.hash) == 0 || key == "" {
		return ErrInvalidStaffKey
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(key)); err != nil {
		return ErrInvalidStaffKey
	}
	return nil
}

// HashStaffKey derives the hash stored in configuration from a raw key.
func HashStaffKey(key string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
