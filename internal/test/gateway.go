package test

import (
	"context"
	"net/url"
	"sync"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// GatewayCall captures a SubmitForm invocation.
type GatewayCall struct {
	Endpoint       string
	Form           url.Values
	IdempotencyKey string
}

// GatewayStub records processor calls and replays a configured response.
type GatewayStub struct {
	SubmitFn func(context.Context, string, url.Values, string) (*model.GatewayResponse, error)
	Response *model.GatewayResponse
	Err      error

	mu    sync.Mutex
	Calls []GatewayCall
}

// SubmitForm records the call then delegates or returns the configured result.
func (g *GatewayStub) SubmitForm(ctx context.Context, endpoint string, form url.Values, key string) (*model.GatewayResponse, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, GatewayCall{Endpoint: endpoint, Form: form, IdempotencyKey: key})
	g.mu.Unlock()
	if g.SubmitFn != nil {
		return g.SubmitFn(ctx, endpoint, form, key)
	}
	if g.Err != nil {
		return nil, g.Err
	}
	if g.Response != nil {
		return g.Response, nil
	}
	return &model.GatewayResponse{StatusCode: 200, Body: []byte(`{"id":"cs_test","url":"https://checkout.example/cs_test"}`)}, nil
}

// CallCount returns the number of recorded calls.
func (g *GatewayStub) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

// PublisherStub collects published orders.
type PublisherStub struct {
	PublishFn func(context.Context, ...model.Order) error

	mu        sync.Mutex
	Published []model.Order
	Closed    bool
}

// PublishPaid records orders unless PublishFn fails.
func (p *PublisherStub) PublishPaid(ctx context.Context, orders ...model.Order) error {
	if p.PublishFn != nil {
		if err := p.PublishFn(ctx, orders...); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, orders...)
	return nil
}

// Close marks the publisher closed.
func (p *PublisherStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// PublishedCount returns the number of orders published so far.
func (p *PublisherStub) PublishedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}
