package depot

import (
	"slices"

	"go.uber.org/zap"
)

// Middleware provides hooks around every resolution, nested ones included.
// Middleware can be used for logging, metrics, access control, testing, etc.
type Middleware interface {
	// BeforeResolve is called before resolving a key.
	// Return error to abort resolution.
	BeforeResolve(key Key) error

	// AfterResolve is called after resolving a key.
	// Called even if resolution failed.
	AfterResolve(key Key, instance any, err error)
}

// middlewareChain is an immutable list of middleware. Adding middleware
// builds a new chain, so resolutions in flight keep the chain they started
// with.
type middlewareChain []Middleware

func newMiddlewareChain(middleware ...Middleware) middlewareChain {
	var chain middlewareChain
	for _, mw := range middleware {
		chain = chain.with(mw)
	}
	return chain
}

// with returns a chain with middleware appended.
func (m middlewareChain) with(middleware Middleware) middlewareChain {
	if middleware == nil {
		return m
	}
	return append(slices.Clip(m), middleware)
}

// beforeResolve calls BeforeResolve on all middleware.
func (m middlewareChain) beforeResolve(key Key) error {
	for _, mw := range m {
		if err := mw.BeforeResolve(key); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m middlewareChain) afterResolve(key Key, instance any, err error) {
	for _, mw := range m {
		mw.AfterResolve(key, instance, err)
	}
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(key Key) error
	AfterResolveFunc  func(key Key, instance any, err error)
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(key Key) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(key)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(key Key, instance any, err error) {
	if f.AfterResolveFunc != nil {
		f.AfterResolveFunc(key, instance, err)
	}
}

// LoggingMiddleware logs every resolution at debug level.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FuncMiddleware{
		AfterResolveFunc: func(key Key, instance any, err error) {
			if err != nil {
				logger.Debug("resolve", zap.Stringer("key", key), zap.Error(err))
				return
			}
			logger.Debug("resolve", zap.Stringer("key", key), zap.String("type", typeName(instance)))
		},
	}
}
