package scope_test

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/scope"
)

func TestGetOrCreateInvokesFactoryOnce(t *testing.T) {
	s := scope.New("root")
	defer s.Close()

	var calls int
	factory := func() (interface{}, error) {
		calls++
		return "resource", nil
	}

	first, err := s.GetOrCreate("k", factory)
	require.NoError(t, err)
	second, err := s.GetOrCreate("k", factory)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrCreateConcurrentCallersShareOneValue(t *testing.T) {
	s := scope.New("root")
	defer s.Close()

	var calls int32
	factory := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return new(int), nil
	}

	const n = 16
	results := make([]interface{}, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.GetOrCreate("k", factory)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "factory must run exactly once")
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i], "all callers must observe the identical value")
	}
}

func TestGetOrCreateFactoryErrorIsNotCached(t *testing.T) {
	s := scope.New("root")
	defer s.Close()

	boom := stderrors.New("boom")
	_, err := s.GetOrCreate("k", func() (interface{}, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := s.GetOrCreate("k", func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGetOrCreateQueuedCallerSurvivesFactoryFailure(t *testing.T) {
	s := scope.New("root")
	defer s.Close()

	boom := stderrors.New("boom")
	failStarted := make(chan struct{})
	failRelease := make(chan struct{})

	var wg sync.WaitGroup
	var failErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, failErr = s.GetOrCreate("k", func() (interface{}, error) {
			close(failStarted)
			<-failRelease
			return nil, boom
		})
	}()
	<-failStarted

	var successes int32
	var queuedVal interface{}
	var queuedErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		queuedVal, queuedErr = s.GetOrCreate("k", func() (interface{}, error) {
			atomic.AddInt32(&successes, 1)
			return "winner", nil
		})
	}()

	// Give the second caller time to queue on the entry before the first
	// factory fails and detaches it.
	time.Sleep(10 * time.Millisecond)
	close(failRelease)
	wg.Wait()

	require.ErrorIs(t, failErr, boom)
	require.NoError(t, queuedErr)
	assert.Equal(t, "winner", queuedVal)

	lateVal, err := s.GetOrCreate("k", func() (interface{}, error) {
		atomic.AddInt32(&successes, 1)
		return "late", nil
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&successes), "only one factory may succeed per key")
	assert.Equal(t, queuedVal, lateVal, "every successful caller must observe the stored value")

	stored, ok := s.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, queuedVal, stored)
}

func TestGetOrCreatePutWhileFactoryInFlight(t *testing.T) {
	s := scope.New("root")
	defer s.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	var got interface{}
	var err error
	go func() {
		defer close(done)
		got, err = s.GetOrCreate("k", func() (interface{}, error) {
			close(started)
			<-release
			return "created", nil
		})
	}()

	<-started
	require.NoError(t, s.Put("k", "replaced"))
	close(release)
	<-done

	require.NoError(t, err)
	assert.Equal(t, "created", got)

	stored, ok := s.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, got, stored, "the returned value and the stored value must agree")
}

func TestLookupIsExactScope(t *testing.T) {
	root := scope.New("suite")
	defer root.Close()
	require.NoError(t, root.Put("k", "parent-value"))

	child, err := root.Child("test")
	require.NoError(t, err)

	_, ok := child.Lookup("k")
	assert.False(t, ok, "Lookup must not walk the hierarchy")

	v, ok := child.Find("k")
	require.True(t, ok)
	assert.Equal(t, "parent-value", v)
}

func TestChildShadowsParentEntry(t *testing.T) {
	root := scope.New("suite")
	defer root.Close()
	require.NoError(t, root.Put("k", "parent"))

	child, err := root.Child("test")
	require.NoError(t, err)
	require.NoError(t, child.Put("k", "child"))

	v, ok := child.Find("k")
	require.True(t, ok)
	assert.Equal(t, "child", v)

	v, ok = root.Find("k")
	require.True(t, ok)
	assert.Equal(t, "parent", v, "child writes must not leak into the parent")
}

func TestCloseRunsTeardownsLIFO(t *testing.T) {
	s := scope.New("root")

	var order []string
	require.NoError(t, s.OnClose(func() error { order = append(order, "first"); return nil }))
	require.NoError(t, s.OnClose(func() error { order = append(order, "second"); return nil }))

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestCloseRunsAllTeardownsDespiteFailure(t *testing.T) {
	s := scope.New("root")

	var ran []string
	require.NoError(t, s.OnClose(func() error { ran = append(ran, "a"); return nil }))
	require.NoError(t, s.OnClose(func() error { ran = append(ran, "b"); return stderrors.New("b failed") }))
	require.NoError(t, s.OnClose(func() error { ran = append(ran, "c"); return nil }))

	err := s.Close()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTeardownFailed, errors.CodeOf(err))
	assert.Equal(t, []string{"c", "b", "a"}, ran, "a failing teardown must not stop the rest")
}

func TestCloseIsIdempotent(t *testing.T) {
	s := scope.New("root")

	var calls int
	require.NoError(t, s.OnClose(func() error { calls++; return nil }))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, calls, "teardown must run exactly once per scope close")
}

func TestCloseClosesOpenChildrenFirst(t *testing.T) {
	root := scope.New("suite")
	child, err := root.Child("test")
	require.NoError(t, err)

	var order []string
	require.NoError(t, root.OnClose(func() error { order = append(order, "root"); return nil }))
	require.NoError(t, child.OnClose(func() error { order = append(order, "child"); return nil }))

	require.NoError(t, root.Close())
	assert.Equal(t, []string{"child", "root"}, order)
	assert.True(t, child.Closed())
}

func TestClosedScopeRefusesOperations(t *testing.T) {
	s := scope.New("root")
	require.NoError(t, s.Close())

	_, err := s.GetOrCreate("k", func() (interface{}, error) { return 1, nil })
	assert.Equal(t, errors.ErrCodeScopeClosed, errors.CodeOf(err))

	err = s.OnClose(func() error { return nil })
	assert.Equal(t, errors.ErrCodeScopeClosed, errors.CodeOf(err))

	err = s.Put("k", 1)
	assert.Equal(t, errors.ErrCodeScopeClosed, errors.CodeOf(err))

	_, err = s.Child("test")
	assert.Equal(t, errors.ErrCodeScopeClosed, errors.CodeOf(err))
}

func TestActivationIsInherited(t *testing.T) {
	root := scope.New("suite")
	defer root.Close()
	root.Activate("playwright")

	child, err := root.Child("test")
	require.NoError(t, err)
	grandchild, err := child.Child("subtest")
	require.NoError(t, err)

	assert.True(t, grandchild.IsActive("playwright"))
	assert.False(t, grandchild.IsActive("database"))
	assert.False(t, root.IsActive("database"))
}

func TestActivationDoesNotFlowDownward(t *testing.T) {
	root := scope.New("suite")
	defer root.Close()

	child, err := root.Child("test")
	require.NoError(t, err)
	child.Activate("playwright")

	assert.True(t, child.IsActive("playwright"))
	assert.False(t, root.IsActive("playwright"), "child activation must not leak to the parent")
}
