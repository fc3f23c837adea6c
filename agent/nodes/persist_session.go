package routernode

import (
	"context"
	"fmt"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

func PersistSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	sess := in.Session

	content := in.Text
	if in.ImageRef != "" {
		if content != "" {
			content += " "
		}
		content += "[image: " + in.ImageRef + "]"
	}
	sess.AppendTurn("user", content, nil, in.Now)
	sess.AppendTurn("assistant", in.Reply, in.ToolsUsed, in.Now)

	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrState, err)
	}
	if err := store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return in, nil
}
