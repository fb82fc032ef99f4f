// Package test provides integration testing infrastructure for the
// candidate acquisition service.
//
// A Suite wires a file-backed SQLite database, the real services, the real
// API server behind httptest and a real API client. Time is driven by a
// manual Clock so stuck job sweeps can be exercised without waiting.
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    s := test.NewSuite(t)
//	    defer s.Cleanup()
//
//	    // Use s.APIClient to make requests
//	    // Use s.Clock.Advance to move past the stuck job threshold
//	}
package test
