// Package client implements the network gateway: the single chokepoint all
// GraphQL operations flow through. Requests pass an ordered pipeline of
// stages (credential attachment, transport, response inspection); an
// UNAUTHENTICATED response triggers at most one refresh-token exchange,
// shared between concurrent callers, before the original request is retried
// once.
package client
