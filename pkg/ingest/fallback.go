package ingest

import "errors"

var ErrNoBuckets = errors.New("no storage buckets configured")

type FallbackState string

const (
	StateTrying      FallbackState = "trying"
	StateSucceeded   FallbackState = "succeeded"
	StateExhausted   FallbackState = "exhausted"
	StateAbortedAuth FallbackState = "aborted-auth"
)

type BucketFailure struct {
	Bucket string
	Err    error
}

// BucketFallback walks an ordered bucket list. Each Step feeds the outcome of
// one upload attempt against Current(). An auth error stops the walk at once.
type BucketFallback struct {
	buckets  []string
	index    int
	state    FallbackState
	isAuth   func(error) bool
	failures []BucketFailure
	winner   string
	path     string
}

func NewBucketFallback(buckets []string, isAuth func(error) bool) *BucketFallback {
	f := &BucketFallback{buckets: buckets, state: StateTrying, isAuth: isAuth}
	if len(buckets) == 0 {
		f.state = StateExhausted
		f.failures = append(f.failures, BucketFailure{Err: ErrNoBuckets})
	}
	return f
}

func (f *BucketFallback) State() FallbackState { return f.state }

// Current is the bucket to try next. Empty once the walk has ended.
func (f *BucketFallback) Current() string {
	if f.state != StateTrying {
		return ""
	}
	return f.buckets[f.index]
}

func (f *BucketFallback) Attempts() int {
	if f.state == StateSucceeded {
		return len(f.failures) + 1
	}
	return len(f.failures)
}

// Step records the result of uploading to Current and returns the new state.
// Calls after the walk has ended are ignored.
func (f *BucketFallback) Step(storedPath string, err error) FallbackState {
	if f.state != StateTrying {
		return f.state
	}

	bucket := f.buckets[f.index]
	if err == nil {
		f.state = StateSucceeded
		f.winner = bucket
		f.path = storedPath
		return f.state
	}

	f.failures = append(f.failures, BucketFailure{Bucket: bucket, Err: err})
	if f.isAuth != nil && f.isAuth(err) {
		f.state = StateAbortedAuth
		return f.state
	}

	f.index++
	if f.index >= len(f.buckets) {
		f.state = StateExhausted
	}
	return f.state
}

// Winner is the bucket and path that accepted the object.
func (f *BucketFallback) Winner() (bucket, path string) {
	return f.winner, f.path
}

func (f *BucketFallback) LastErr() error {
	if len(f.failures) == 0 {
		return nil
	}
	return f.failures[len(f.failures)-1].Err
}

func (f *BucketFallback) Failures() []BucketFailure {
	return append([]BucketFailure(nil), f.failures...)
}
