package routernode

import (
	"errors"
	"strings"
	"time"

	"github.com/prajwalh/krishi-mitra/agent/i18n"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

var (
	ErrInvalidUser = errors.New("user id is empty")
	ErrEmptyTurn   = errors.New("turn carries no text and no image")
)

type GraphInput struct {
	UserID   string
	Text     string
	ImageRef string
}

type GraphOutput struct {
	Reply     string
	ToolsUsed []string
	Stage     statex.Stage
}

type GraphState struct {
	UserID   string
	Text     string
	ImageRef string
	Now      time.Time

	Session *statex.Session
	Lang    i18n.Language

	Reply      string
	ToolsUsed  []string
	ReplyStage statex.Stage
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	imageRef := strings.TrimSpace(in.ImageRef)
	if text == "" && imageRef == "" {
		return nil, ErrEmptyTurn
	}

	return &GraphState{
		UserID:   userID,
		Text:     text,
		ImageRef: imageRef,
		Now:      nowFn().UTC(),
	}, nil
}
