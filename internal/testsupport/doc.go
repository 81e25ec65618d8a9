// Package testsupport provides shared fixtures for tests: temp-dir configs,
// a stand-in annotation tool, source trees and the run ledger.
package testsupport
