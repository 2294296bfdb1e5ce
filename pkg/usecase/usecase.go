package usecase

import (
	"github.com/oneiro-lab/morpheus/pkg/domain/interfaces"
	"github.com/oneiro-lab/morpheus/pkg/service/insight"
	slacksvc "github.com/oneiro-lab/morpheus/pkg/service/slack"
	"github.com/oneiro-lab/morpheus/pkg/service/telegraph"
)

type UseCases struct {
	repo      interfaces.Repository
	insight   *insight.Service
	telegraph *telegraph.Service
	slack     slacksvc.Service

	Memories *Memories
	Chat     *Chat
}

type Option func(*UseCases)

// WithTelegraph enables publishing created memories as public pages.
func WithTelegraph(svc *telegraph.Service) Option {
	return func(uc *UseCases) {
		uc.telegraph = svc
	}
}

// WithSlackService enables the chat front-end.
func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slack = svc
	}
}

func New(repo interfaces.Repository, insightSvc *insight.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		insight: insightSvc,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Memories = NewMemories(repo, insightSvc, uc.telegraph)
	if uc.slack != nil {
		uc.Chat = NewChat(uc.Memories, uc.slack)
	}

	return uc
}
