package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go skillbridge/internal/common/uuid Generator

// Generator abstracts id generation for deterministic tests.
type Generator interface {
	NewID() string
}

// DefaultGenerator implements Generator with random UUIDv4 strings.
type DefaultGenerator struct{}

// New returns a uuid-backed Generator.
func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewID returns a new random UUID string.
func (g *DefaultGenerator) NewID() string {
	return uuid.New().String()
}
