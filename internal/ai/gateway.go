package ai

import (
	"context"
	"fmt"
)

// Gateway exposes the app's three text generation operations as fixed
// persona/prompt pairings over a chat-completions client
type Gateway struct {
	client *Client
}

// NewGateway creates a new gateway
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

// Reinforcement generates a short encouraging message for a completed achievement
func (g *Gateway) Reinforcement(ctx context.Context, achievement string) (string, error) {
	system := "You are a friendly, encouraging AI assistant for children with autism. Use simple language, positive reinforcement, and space-themed metaphors. Keep responses to 2-3 short sentences."
	user := fmt.Sprintf("Generate a positive, encouraging message for a child who just %s. Use space themes like stars, planets, and astronauts.", achievement)
	return g.client.Complete(ctx, system, user, 0.7, 100)
}

// Simplify explains a space topic in a few very simple sentences
func (g *Gateway) Simplify(ctx context.Context, topic string) (string, error) {
	system := "You are an educational AI that explains space topics to children with autism. Use very simple language, short sentences, and concrete examples. Avoid metaphors that might be confusing. Keep explanations to 3-4 simple sentences."
	user := fmt.Sprintf("Explain %s to a 7-year-old child with autism in 3-4 very simple sentences.", topic)
	return g.client.Complete(ctx, system, user, 0.5, 150)
}

// SpaceFact returns one short space fact suitable for a child
func (g *Gateway) SpaceFact(ctx context.Context) (string, error) {
	system := "You are an educational AI that shares interesting space facts for children with autism. Use simple language and make facts engaging and easy to understand."
	user := "Share one interesting but simple space fact that a child would find amazing. Keep it to 2 sentences."
	return g.client.Complete(ctx, system, user, 0.8, 100)
}
