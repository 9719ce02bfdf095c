// Package vtree provides the virtual-node core of the framework.
//
// VN is the base entity for every node in the render tree. It owns the
// node's lifecycle (Init/Term), its linkage into the tree (parent, depth,
// sibling links, child list), update-request deduplication, and the
// per-node half of the hierarchical service publish/subscribe mechanism.
//
// # Lifecycle
//
// A node is constructed by the reconciler, wired into the tree with Init,
// mutated through its mounted life by publish/subscribe/update calls, and
// torn down with Term. Term unwinds all registry state before the node
// becomes unreachable; skipping it leaks registry entries.
//
// # Services
//
// A service is a named, arbitrarily typed value a node makes available to
// its descendants. PublishService/SubscribeService/GetService resolve over
// the parent chain, nearest publisher first. Change notification is pushed
// through the process-wide registry in package services; the registry calls
// back through the narrow NotifyServiceChanged contract so neither side
// depends on the other's full type.
//
// # Update scheduling
//
// RequestUpdate forwards the node to the configured UpdateScheduler at most
// once per dirty period. The scheduler clears UpdateRequested and stamps
// LastUpdateTick when the update actually runs.
//
// # Callback wrapping
//
// WrapCallback returns a callable that recovers a panic from the wrapped
// function, resolves the nearest error-handling service over the parent
// chain, and reports the recovered value together with the node's path. If
// no handler is found the panic is re-raised to the wrapper's caller.
package vtree
