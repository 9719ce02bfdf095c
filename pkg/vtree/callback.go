package vtree

// ErrorHandlingServiceID is the well-known service ID under which a node
// publishes its ErrorHandler. WrapCallback resolves it over the parent
// chain of the wrapping node.
const ErrorHandlingServiceID = "StdErrorHandling"

// ErrorHandler receives panics recovered from wrapped callbacks.
//
// "Handler not found" is a valid, non-exceptional outcome of the ancestor
// search — the panic then propagates to the wrapper's caller. A handler
// that itself panics is a separate failure and is not intercepted.
type ErrorHandler interface {
	// ReportError is called with the recovered panic value and the path
	// of the node the callback belonged to, leaf first.
	ReportError(err any, path []string)
}

// FindErrorHandler resolves the nearest error-handling service published
// on vn's parent chain.
func FindErrorHandler(vn *VN) (ErrorHandler, bool) {
	svc, ok := vn.FindService(ErrorHandlingServiceID, false)
	if !ok {
		return nil, false
	}
	h, ok := svc.(ErrorHandler)
	return h, ok
}

// WrapCallback returns a callable that invokes fn and intercepts a panic
// escaping it. The recovered value and this node's path are reported to
// the nearest ancestor error-handling service; if no handler is found the
// panic is re-raised to the wrapper's caller. This lets external callbacks
// (event handlers, timers) participate in the tree's error-bubbling model
// without instrumenting every call site.
func (vn *VN) WrapCallback(fn func()) func() {
	return func() {
		defer vn.deliverPanic()
		fn()
	}
}

// WrapCallbackOf is the one-argument form of VN.WrapCallback for
// event-handler style callbacks.
func WrapCallbackOf[T any](vn *VN, fn func(T)) func(T) {
	return func(arg T) {
		defer vn.deliverPanic()
		fn(arg)
	}
}

// deliverPanic recovers an in-flight panic and routes it to the nearest
// error-handling service, re-raising when none is published. Must be
// invoked directly by a defer statement.
func (vn *VN) deliverPanic() {
	r := recover()
	if r == nil {
		return
	}

	h, ok := FindErrorHandler(vn)
	if !ok {
		panic(r)
	}
	h.ReportError(r, vn.Path())
}
