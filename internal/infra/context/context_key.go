// Package context holds request scoped values shared by the transport, client and logging layers.
package context

type contextKey string
