package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/noah-isme/studylab-api/pkg/config"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

const maxSuffixAttempts = 10

type usernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// UsernameAllocator is the single place that decides the login identifier of a new account.
type UsernameAllocator struct {
	policy string
	suffix func() (string, error)
}

// NewUsernameAllocator builds an allocator for the configured policy; unknown policies reject.
func NewUsernameAllocator(policy string) *UsernameAllocator {
	if policy != config.UsernamePolicySuffix {
		policy = config.UsernamePolicyReject
	}
	return &UsernameAllocator{policy: policy, suffix: randomDigits}
}

// Policy returns the active policy name.
func (a *UsernameAllocator) Policy() string {
	return a.policy
}

// Allocate returns an unused identifier derived from desired. Under the reject policy a taken
// identifier yields ErrDuplicateAccount; under suffix random digits are appended until one is free.
func (a *UsernameAllocator) Allocate(ctx context.Context, checker usernameChecker, desired string) (string, error) {
	desired = strings.ToLower(strings.TrimSpace(desired))
	if desired == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "a login identifier is required")
	}

	taken, err := checker.UsernameExists(ctx, desired)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if !taken {
		return desired, nil
	}
	if a.policy == config.UsernamePolicyReject {
		return "", appErrors.Clone(appErrors.ErrDuplicateAccount, "A user with this email already exists!")
	}

	for i := 0; i < maxSuffixAttempts; i++ {
		digits, err := a.suffix()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate username")
		}
		candidate := desired + digits
		taken, err := checker.UsernameExists(ctx, candidate)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrDuplicateAccount, "could not allocate a free username")
}

func randomDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
