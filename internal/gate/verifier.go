package gate

import (
	"context"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/security"
)

// Result is the uniform outcome shared by every verification tier.
type Result struct {
	Granted bool
	Reason  string
}

// Denial reasons. A configured password always yields the generic message so
// a failed attempt cannot tell which tier rejected it; the plan message is
// only used when no password exists at all.
const (
	ReasonIncorrect  = "incorrect password"
	ReasonPlanDenied = "access denied by plan"
	ReasonEmpty      = "password is required"
)

// verifier is one tier of the unlock chain. Tiers are tried in declaration
// order; the first applicable tier that grants wins.
type verifier interface {
	name() string
	applicable(store *models.Store) bool
	verify(ctx context.Context, store *models.Store, secret string) (Result, error)
}

// digestVerifier checks the secret against the locally held argon2id digest.
type digestVerifier struct{}

func (digestVerifier) name() string { return "digest" }

func (digestVerifier) applicable(store *models.Store) bool {
	return store.PasswordHash != nil && *store.PasswordHash != ""
}

func (digestVerifier) verify(ctx context.Context, store *models.Store, secret string) (Result, error) {
	ok, err := security.VerifyPassword(secret, *store.PasswordHash)
	if err != nil {
		// A malformed stored digest denies rather than erroring; the
		// plaintext and remote tiers may still grant.
		return Result{Reason: ReasonIncorrect}, nil
	}
	if !ok {
		return Result{Reason: ReasonIncorrect}, nil
	}
	return Result{Granted: true}, nil
}

// plaintextVerifier compares the secret verbatim against the legacy plaintext
// column.
type plaintextVerifier struct{}

func (plaintextVerifier) name() string { return "plaintext" }

func (plaintextVerifier) applicable(store *models.Store) bool {
	return store.PasswordPlain != nil && *store.PasswordPlain != ""
}

func (plaintextVerifier) verify(ctx context.Context, store *models.Store, secret string) (Result, error) {
	if secret != *store.PasswordPlain {
		return Result{Reason: ReasonIncorrect}, nil
	}
	return Result{Granted: true}, nil
}

type passwordAuthority interface {
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}

// remoteVerifier delegates to the order hub for tenants whose password lives
// only server-side.
type remoteVerifier struct {
	authority passwordAuthority
}

func (remoteVerifier) name() string { return "remote" }

func (v remoteVerifier) applicable(store *models.Store) bool {
	return v.authority != nil && store.PasswordRemote
}

func (v remoteVerifier) verify(ctx context.Context, store *models.Store, secret string) (Result, error) {
	ok, err := v.authority.VerifyPassword(ctx, store.OwnerID.String(), secret)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remote password verification")
	}
	if !ok {
		return Result{Reason: ReasonIncorrect}, nil
	}
	return Result{Granted: true}, nil
}

type permissionResolver interface {
	Allowed(store *models.Store, feature enums.Feature) bool
}

// planVerifier is the no-password fallback: the plan matrix (or trial
// override) decides whether prices open up.
type planVerifier struct {
	permissions permissionResolver
}

func (planVerifier) name() string { return "plan" }

func (v planVerifier) applicable(store *models.Store) bool {
	return v.permissions != nil && !store.HasGatePassword()
}

func (v planVerifier) verify(ctx context.Context, store *models.Store, secret string) (Result, error) {
	if !v.permissions.Allowed(store, enums.FeatureViewPrices) {
		return Result{Reason: ReasonPlanDenied}, nil
	}
	return Result{Granted: true}, nil
}
