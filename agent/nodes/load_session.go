package routernode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	"github.com/prajwalh/krishi-mitra/agent/i18n"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

// Profile defaults for first-time users with no stored record.
const (
	DefaultLocation = "Karnataka"
	DefaultLanguage = "kn"
)

func LoadSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	profiles statex.ProfileSource,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, in.UserID)
	switch {
	case err == nil:
	case errors.Is(err, statex.ErrSessionNotFound):
		sess, err = newSessionWithProfile(ctx, in, profiles)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	sess.EnsureChecklist()
	in.Session = sess
	in.Lang = i18n.Normalize(sess.Profile.PreferredLanguage)
	return in, nil
}

func newSessionWithProfile(
	ctx context.Context,
	in *GraphState,
	profiles statex.ProfileSource,
) (*statex.Session, error) {
	sess := statex.NewSession(in.UserID, in.Now)
	sess.Profile.Location = DefaultLocation
	sess.Profile.PreferredLanguage = DefaultLanguage

	if profiles == nil {
		return sess, nil
	}
	profile, found, err := profiles.Lookup(ctx, in.UserID)
	if err != nil {
		// A broken profile backend must not block the conversation.
		return sess, nil
	}
	if found {
		if profile.Location == "" {
			profile.Location = DefaultLocation
		}
		if profile.PreferredLanguage == "" {
			profile.PreferredLanguage = DefaultLanguage
		}
		sess.Profile = profile
	}
	return sess, nil
}
