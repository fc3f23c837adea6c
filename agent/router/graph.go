package router

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	routernode "github.com/prajwalh/krishi-mitra/agent/nodes"
)

func (r *Router) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[routernode.GraphInput, routernode.GraphOutput], error) {
	graph := compose.NewGraph[routernode.GraphInput, routernode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in routernode.GraphInput) (*routernode.GraphState, error) {
			return routernode.ValidateRequest(in, r.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *routernode.GraphState) (*routernode.GraphState, error) {
			return routernode.LoadSession(ctx, in, r.store, r.profiles)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_turn",
		compose.InvokableLambda(func(ctx context.Context, in *routernode.GraphState) (*routernode.GraphState, error) {
			return routernode.DispatchTurn(ctx, in, r.models, r.classifier, r.capTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_turn: %w", err)
	}

	if err := graph.AddLambdaNode("persist_session",
		compose.InvokableLambda(func(ctx context.Context, in *routernode.GraphState) (*routernode.GraphState, error) {
			return routernode.PersistSession(ctx, in, r.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *routernode.GraphState) (routernode.GraphOutput, error) {
			return routernode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "dispatch_turn"},
		{"dispatch_turn", "persist_session"},
		{"persist_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}
