// Package scope provides hierarchical execution scopes for test suites.
//
// A Scope is a unit of test execution (suite, sub-suite, or single test)
// with its own key-value store, capability activation set, and a closing
// event. Resources created in a scope via GetOrCreate live exactly as long
// as the scope: every registered teardown runs once when the scope closes,
// regardless of how the test exited.
//
// Scopes nest. A child sees its ancestors' entries through Find but shadows
// them with its own Put; Lookup never walks the hierarchy.
//
//	root := scope.New("suite")
//	defer root.Close()
//
//	func TestLogin(t *testing.T) {
//	    s := scope.Bind(t, root) // closed automatically by t.Cleanup
//	    s.OnClose(server.Shutdown)
//	}
package scope
