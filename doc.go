// Package loom is a scoped dependency-injection container for Go 1.25+.
//
// Loom wires object graphs from registered providers: given a requested
// type it computes a valid construction order, builds each dependency
// exactly once per scope activation, rejects cyclic registrations, and
// tears scoped resources down in reverse construction order.
//
// # Quick Start
//
// Create a container and register providers:
//
//	c := loom.New()
//
//	loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Config, error) {
//	    return &Config{Port: 8080}, nil
//	})
//
//	loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Server, error) {
//	    cfg, err := loom.ResolveAs[*Config](ctx, r, loom.KeyOf[*Config]())
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Server{config: cfg}, nil
//	}, loom.WithDependencies(loom.KeyOf[*Config]()))
//
//	c.Run(ctx)
//
// # Providers
//
// Providers are functions that create instances of a type. They receive
// a context and a Resolver for accessing other dependencies. Declared
// dependencies are constructed first, in declared order:
//
//	loom.Provide[T](c, provider)                  // factory provider
//	loom.ProvideValue[T](c, value)                // existing value
//	loom.ProvideResource[T](c, provider, cleanup) // factory + teardown step
//	loom.ProvideNamed[T](c, "name", provider)     // qualified key
//
// # Scopes
//
// Every provider has a lifetime policy:
//
//   - Singleton (default): one instance for the container's lifetime.
//   - Contextual: one instance per entered scope, e.g. per request.
//   - Transient: a fresh instance per resolution, owned by the caller.
//
// Contextual scopes are entered and exited around units of work and
// must close in LIFO order:
//
//	ctx, scope, err := c.EnterScope(ctx)
//	defer scope.Close(ctx)
//
//	svc, err := loom.InvokeCtx[*RequestState](ctx, c)
//
// Or delimited:
//
//	err := c.InScope(ctx, func(ctx context.Context) error {
//	    svc, err := loom.InvokeCtx[*RequestState](ctx, c)
//	    ...
//	})
//
// # Resolution
//
//	svc, err := loom.Invoke[*Service](c)          // root scope
//	svc, err := loom.InvokeCtx[*Service](ctx, c)  // scope carried by ctx
//	svc := loom.MustInvoke[*Service](c)           // panics on error
//
// Concurrent first resolutions of one key are single-flight: exactly
// one resolver runs the factory, everyone else waits for the same
// instance or the same failure. Cancelling the constructing resolver
// fails the in-flight entry with Cancelled for every waiter.
//
// # Resources and Teardown
//
// Resource providers pair a factory with a cleanup step:
//
//	loom.ProvideResource(c, openConn, func(ctx context.Context, conn *Conn) error {
//	    return conn.Close()
//	})
//
// When a scope closes, cleanups run in strict reverse construction
// order, so a dependency is never finalized before its dependents.
// Cleanup failures are collected and reported together, never dropped.
//
// # Lifecycle
//
//	c.Validate()  // eager checks: missing deps, cycles, scope mismatches
//	c.Start(ctx)  // eagerly builds non-lazy singletons, runs OnStart hooks
//	c.Stop(ctx)   // OnStop hooks + teardown, closes the singleton scope
//	c.Run(ctx)    // Start, block until signal/ctx, Stop
//
// # Overrides
//
// Tests can swap a binding for a delimited block:
//
//	restore, err := loom.Override(c, stubProvider)
//	defer restore()
//
// The loomtest package restores overrides automatically on test
// cleanup.
//
// # Errors
//
// Every failure is a *loom.Error with an ErrorCode and the dependency
// key chain that led to it. Use the predicates to classify:
//
//	if loom.IsCyclicDependency(err) { ... }
//	if loom.IsScopeClosed(err) { ... }
package loom
