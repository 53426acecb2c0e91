package myapi

import (
	"context"
	"fmt"

	polyjson "github.com/reoring/polyjson"
)

// Fetcher supplies the raw JSON of a collection. Transport, retries and
// authentication are the implementation's concern.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

// Item is one element of an enveloped collection: the discriminator-selected
// kind and the record decoded from the payload.
type Item struct {
	Kind       Kind `json:"kind"`
	Properties Base `json:"properties"`
}

// Client decodes fetched collections into typed records.
type Client struct {
	fetcher  Fetcher
	dec      *polyjson.Decoder
	base     string
	envelope bool
}

// Option configures a Client.
type Option func(*Client)

// WithDecoder replaces the decoder, for example to enable strict mode or an
// observer. The decoder's registry must define this package's shapes.
func WithDecoder(d *polyjson.Decoder) Option { return func(c *Client) { c.dec = d } }

// WithBase selects the base shape the collection is declared as.
func WithBase(base string) Option { return func(c *Client) { c.base = base } }

// WithEnvelopes makes the client expect envelope elements whose payload
// carries the fields.
func WithEnvelopes() Option { return func(c *Client) { c.envelope = true } }

// NewClient returns a client reading from f. By default it decodes a plain
// array declared as Base against Registry().
func NewClient(f Fetcher, opts ...Option) (*Client, error) {
	c := &Client{fetcher: f, base: ShapeBase}
	for _, o := range opts {
		o(c)
	}
	if c.dec == nil {
		reg, err := Registry()
		if err != nil {
			return nil, err
		}
		c.dec = polyjson.NewDecoder(reg)
	}
	return c, nil
}

// GetAll fetches the collection and returns one Base per element, in input
// order. Elements holding a variant shape can be narrowed with AsDerived.
func (c *Client) GetAll(ctx context.Context) ([]Base, error) {
	if !c.envelope {
		data, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		vals, err := c.dec.DecodeBytes(c.base, data)
		if err != nil {
			return nil, fmt.Errorf("myapi: get all: %w", err)
		}
		return Records(vals)
	}
	items, err := c.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Base, len(items))
	for i, it := range items {
		out[i] = it.Properties
	}
	return out, nil
}

// GetItems fetches an enveloped collection.
func (c *Client) GetItems(ctx context.Context) ([]Item, error) {
	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	envs, err := c.dec.DecodeEnvelopes(c.base, polyjson.JSONBytes(data))
	if err != nil {
		return nil, fmt.Errorf("myapi: get items: %w", err)
	}
	out := make([]Item, 0, len(envs))
	for _, e := range envs {
		rec, err := Wrap(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Item{Kind: rec.Kind(), Properties: rec})
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("myapi: fetch: %w", err)
	}
	return data, nil
}
