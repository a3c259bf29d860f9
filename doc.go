/*
Package eventhost provides a small, owner-keyed event host for decoupled component-to-component signaling.

# Hosts

There are two flavors of host:
  - [EventHost] dispatches synchronously with [EventHost.Dispatch].
  - [AsyncEventHost] lets handlers return a pending [syncx.Future], and [AsyncEventHost.DispatchAndAwaitAll] waits for all of them to settle.

A host is parameterized over the argument type T that is passed to every handler.
Use a struct type to pass multiple values, or struct{} when the event carries no data.

# Owners

Every handler is bound under an [Owner], which is usually the binding component itself (a pointer gives reference identity).
Binding several handlers under the same owner accumulates them, and they are invoked in the order they were bound.
Owners are invoked in the order they first bound a handler.

When a component is torn down, it calls [Unbind] (or [UnbindAsync] for the async flavor) with its owner key.
This removes its handlers from every host of that flavor, so the component doesn't need to track which hosts it bound to.
To support this, every host is registered with its flavor when it's constructed, and stays registered for the life of the process.
Hosts are expected to live as long as the application does.

# Once handlers

A handler bound with [HandlerOptions.Once] (or with BindOnce) is invoked in the next dispatch cycle and then removed, even if it panics or fails.

# Dispatch cycles

Each dispatch works from a snapshot of the owners and handlers registered when it starts.
Handlers bound during a dispatch are first invoked in the next one, and handlers unbound during a dispatch still run in the current one.

A panic in a synchronous handler aborts the rest of the dispatch and propagates to the caller of [EventHost.Dispatch].
The once handlers of the owner being dispatched are still removed before the panic continues.

Failures in async handlers never reach the dispatcher.
They are logged, and reported to the function given to [WithErrorHandler], if any.
*/
package eventhost
