// Package provider implements typed scoped-singleton resources.
//
// A Provider declares a capability name, a store key, and a factory. Get
// resolves the resource from a scope: it refuses when the scope never
// activated the capability, creates the resource at most once per scope,
// and binds the factory's teardown to the scope's closing event. This is
// the injection point a test reaches for instead of constructing shared
// resources by hand:
//
//	var Browser = provider.New("playwright", "browser", launchBrowser)
//
//	func TestLogin(t *testing.T) {
//	    s := scope.Bind(t, suite)
//	    b := Browser.MustGet(t, s) // same instance for every test in s
//	    ...
//	}
package provider
