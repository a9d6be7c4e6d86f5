// Package ai describes optional language-model helpers for matched pairs.
package ai

import (
	"context"

	"github.com/spigell/matchmaker/internal/participant"
)

// Introduction is a short message that presents two matched participants to each other.
type Introduction struct {
	A          string   `json:"a"`
	B          string   `json:"b"`
	Message    string   `json:"message"`
	Topics     []string `json:"topics,omitempty"`
	Confidence float64  `json:"confidence"`
	Raw        string   `json:"-"`
}

// Introducer writes introductions for matched pairs.
type Introducer interface {
	Introduce(ctx context.Context, a, b *participant.Participant, score float64) (*Introduction, error)
}
