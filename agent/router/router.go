// Package router owns the per-turn decision loop: it serializes turns per
// user, loads session state, delegates to exactly the capabilities a turn
// needs and persists the outcome before replying.
package router

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	intentx "github.com/prajwalh/krishi-mitra/agent/intent"
	routernode "github.com/prajwalh/krishi-mitra/agent/nodes"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

var (
	ErrInvalidUser = routernode.ErrInvalidUser
	ErrEmptyTurn   = routernode.ErrEmptyTurn
)

const defaultCapabilityTimeout = 30 * time.Second

type Config struct {
	// CapabilityTimeout bounds each external capability call. A timed out
	// call is treated as a capability failure, never as a router failure.
	CapabilityTimeout time.Duration
}

type TurnInput struct {
	UserID   string
	Message  string
	ImageRef string
}

type TurnOutput struct {
	Reply     string
	ToolsUsed []string
	Stage     statex.Stage
}

type Router struct {
	store      statex.Store
	models     contractx.Registry
	classifier intentx.Classifier
	profiles   statex.ProfileSource

	graphRunner compose.Runnable[routernode.GraphInput, routernode.GraphOutput]

	capTimeout time.Duration
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	store statex.Store,
	models contractx.Registry,
	classifier intentx.Classifier,
	profiles statex.ProfileSource,
	cfg Config,
) (*Router, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if models == nil {
		return nil, errors.New("capability registry is required")
	}
	if classifier == nil {
		classifier = intentx.NewKeywordClassifier()
	}

	capTimeout := cfg.CapabilityTimeout
	if capTimeout <= 0 {
		capTimeout = defaultCapabilityTimeout
	}

	r := &Router{
		store:      store,
		models:     models,
		classifier: classifier,
		profiles:   profiles,
		capTimeout: capTimeout,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}

	graphRunner, err := r.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// HandleTurn processes one user turn. Turns from the same user run strictly
// one at a time; turns from different users run concurrently.
func (r *Router) HandleTurn(ctx context.Context, in TurnInput) (TurnOutput, error) {
	lock := r.userLock(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	out, err := r.graphRunner.Invoke(ctx, routernode.GraphInput{
		UserID:   in.UserID,
		Text:     in.Message,
		ImageRef: in.ImageRef,
	})
	if err != nil {
		return TurnOutput{}, err
	}
	return TurnOutput{
		Reply:     out.Reply,
		ToolsUsed: out.ToolsUsed,
		Stage:     out.Stage,
	}, nil
}

func (r *Router) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}
