package policy

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

type policyFile struct {
	Moderation struct {
		StrikeLimit            int `toml:"strike_limit"`
		SuspensionDurationDays int `toml:"suspension_duration_days"`
	} `toml:"moderation"`
}

// TOMLSource reads the policy file on every call so operators can retune
// thresholds without a restart. Missing files and unset keys fall back to
// the configured defaults.
type TOMLSource struct {
	path     string
	fallback moderation.Policy
}

var _ ports.PolicySource = (*TOMLSource)(nil)

func NewTOMLSource(path string, fallback moderation.Policy) *TOMLSource {
	return &TOMLSource{
		path:     strings.TrimSpace(path),
		fallback: fallback,
	}
}

func (s *TOMLSource) Policy(ctx context.Context) (moderation.Policy, error) {
	if ctx == nil {
		return moderation.Policy{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return moderation.Policy{}, errs.Wrap(err, "check context")
	}
	if s.path == "" {
		return s.fallback, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.fallback, nil
		}
		return moderation.Policy{}, errs.Wrapf(err, "read policy file %s", s.path)
	}

	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return moderation.Policy{}, errs.Wrapf(err, "decode policy file %s", s.path)
	}

	policy := s.fallback
	if file.Moderation.StrikeLimit != 0 {
		policy.StrikeLimit = file.Moderation.StrikeLimit
	}
	if file.Moderation.SuspensionDurationDays != 0 {
		policy.SuspensionDurationDays = file.Moderation.SuspensionDurationDays
	}
	if policy.StrikeLimit <= 0 || policy.SuspensionDurationDays <= 0 {
		return moderation.Policy{}, errs.Invalid("policy file %s: strike_limit and suspension_duration_days must be positive", s.path)
	}
	return policy, nil
}

// Static serves a fixed policy.
type Static struct {
	Value moderation.Policy
}

var _ ports.PolicySource = Static{}

func (s Static) Policy(context.Context) (moderation.Policy, error) {
	return s.Value, nil
}
