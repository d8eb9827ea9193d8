// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - FakeEtcd: an httptest server speaking the etcd v2 members API
//   - NodeBuilder: fluent builder for member descriptors
//   - Fixtures: canned candidate and live membership sets
//
// Usage:
//
//	fake := testing.NewFakeEtcd(t)
//	fake.SetMembers(testing.LiveMember("a1", "node-a", "10.0.0.1"))
//	candidates := testing.Candidates("10.0.0.1", "10.0.0.2")
package testing
