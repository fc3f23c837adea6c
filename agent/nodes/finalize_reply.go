package routernode

import (
	"fmt"
	"strings"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: dispatcher produced an empty reply", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply:     reply,
		ToolsUsed: in.ToolsUsed,
		Stage:     in.ReplyStage,
	}, nil
}
