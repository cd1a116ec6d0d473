package ports

import (
	"context"

	"catalogo/internal/domain/moderation"
)

// PolicySource supplies the moderation policy. Implementations are consulted
// on every call and must not cache values across calls.
type PolicySource interface {
	Policy(ctx context.Context) (moderation.Policy, error)
}
