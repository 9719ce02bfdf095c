package vtree

// DebugMode enables development-time checks that panic on API misuse,
// such as calling Init twice on the same node. Production builds leave it
// false: misuse checks are skipped and the calls are undefined behavior.
//
// Set this at application startup:
//
//	func main() {
//	    vtree.DebugMode = os.Getenv("VTREE_DEV") == "1"
//	    // ...
//	}
var DebugMode = false
