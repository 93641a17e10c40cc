package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
)

const unlockedMarker = "1"

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GateKey(storeID, sessionID string) string
}

// Service is the price gate: a per-session locked/unlocked state whose only
// path to unlocked runs through the ordered verification chain.
type Service interface {
	Unlock(ctx context.Context, store *models.Store, sessionID, secret string) (Result, error)
	Lock(ctx context.Context, store *models.Store, sessionID string) error
	Unlocked(ctx context.Context, store *models.Store, sessionID string) (bool, error)
}

type service struct {
	kv        kvStore
	verifiers []verifier
	ttl       time.Duration
	logg      *logger.Logger
}

// NewService wires the verification chain in its fixed order: local digest,
// legacy plaintext, remote authority, plan fallback.
func NewService(kv kvStore, authority passwordAuthority, permissions permissionResolver, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if permissions == nil {
		return nil, fmt.Errorf("permission resolver required")
	}
	return &service{
		kv: kv,
		verifiers: []verifier{
			digestVerifier{},
			plaintextVerifier{},
			remoteVerifier{authority: authority},
			planVerifier{permissions: permissions},
		},
		ttl:  ttl,
		logg: logg,
	}, nil
}

// Unlock runs the chain. An empty secret short-circuits before any tier is
// consulted. A grant is a one-way transition for the session; re-locking only
// happens through Lock.
func (s *service) Unlock(ctx context.Context, store *models.Store, sessionID, secret string) (Result, error) {
	if store == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(secret) == "" {
		return Result{Reason: ReasonEmpty}, nil
	}

	attempted := false
	for _, v := range s.verifiers {
		if !v.applicable(store) {
			continue
		}
		attempted = true

		result, err := v.verify(ctx, store, secret)
		if err != nil {
			return Result{}, err
		}
		if result.Granted {
			if err := s.persistUnlock(ctx, store, sessionID); err != nil {
				return Result{}, err
			}
			if s.logg != nil {
				s.logg.Info(s.logg.WithStoreID(ctx, store.ID.String()), "price gate unlocked via "+v.name())
			}
			return result, nil
		}
	}

	if !attempted {
		// No tier applied at all: no password and no resolver opinion.
		return Result{Reason: ReasonPlanDenied}, nil
	}
	if store.HasGatePassword() {
		return Result{Reason: ReasonIncorrect}, nil
	}
	return Result{Reason: ReasonPlanDenied}, nil
}

// Lock re-locks the session explicitly.
func (s *service) Lock(ctx context.Context, store *models.Store, sessionID string) error {
	if store == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if err := s.kv.Del(ctx, s.kv.GateKey(store.ID.String(), sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking gate")
	}
	return nil
}

// Unlocked reports whether this session has already passed the gate.
func (s *service) Unlocked(ctx context.Context, store *models.Store, sessionID string) (bool, error) {
	if store == nil || strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	raw, err := s.kv.Get(ctx, s.kv.GateKey(store.ID.String(), sessionID))
	if errors.Is(err, pkgredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading gate state")
	}
	return raw == unlockedMarker, nil
}

func (s *service) persistUnlock(ctx context.Context, store *models.Store, sessionID string) error {
	key := s.kv.GateKey(store.ID.String(), sessionID)
	if err := s.kv.Set(ctx, key, unlockedMarker, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting gate state")
	}
	return nil
}
