// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [ReaderDevice]: Talks to the proximity-card reader
//   - [CardReporter]: Publishes successfully read card identifiers
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// hardware, file system and output implementations, which keeps the
// lifecycle logic testable with scripted mocks.
package ports
