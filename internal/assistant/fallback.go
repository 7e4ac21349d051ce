package assistant

import (
	"errors"
	"math/rand/v2"
)

var errEmptyCompletion = errors.New("completion returned no choices")

var fallbackReplies = []string{
	"I'm having trouble connecting right now, but I'm still here for you. How has your day been going?",
	"It seems I can't reach my full capabilities at the moment. In the meantime, remember that small consistent steps add up. What's one thing you'd like to focus on today?",
	"I couldn't process that just now, but don't let it break your momentum. Maybe take a short breather and check in with one of your goals or habits?",
}

func fallbackReply() string {
	return fallbackReplies[rand.IntN(len(fallbackReplies))]
}
